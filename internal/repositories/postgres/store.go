package postgres

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the record-store repositories so a service can run several
// writes in one database transaction.
type Store interface {
	Candidates() CandidateRepository
	Slots() SlotRepository
	Interviews() InterviewRepository
	Notifications() NotificationRepository
	Outbox() OutboxRepository
	Users() UserRepository

	// WithinTx runs fn against a Store bound to a single transaction. Any error
	// returned by fn rolls the transaction back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Candidates() CandidateRepository       { return &candidateRepo{db: s.db} }
func (s *store) Slots() SlotRepository                 { return &slotRepo{db: s.db} }
func (s *store) Interviews() InterviewRepository       { return &interviewRepo{db: s.db} }
func (s *store) Notifications() NotificationRepository { return &notificationRepo{db: s.db} }
func (s *store) Outbox() OutboxRepository              { return &outboxRepo{db: s.db} }
func (s *store) Users() UserRepository                 { return &userRepo{db: s.db} }

func (s *store) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
