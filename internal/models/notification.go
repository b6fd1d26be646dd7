package models

import "time"

// Notification is an internal staff alert shown in the bell feed.
type Notification struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;type:text;not null" json:"title"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
