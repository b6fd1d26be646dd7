package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, u *models.User) error
	UpdateFullName(ctx context.Context, id, fullName string) error
	Delete(ctx context.Context, id string) error

	RoleNames(ctx context.Context, userID string) ([]string, error)
	SetRoles(ctx context.Context, userID string, roleNames []string) error
	ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	EnsureRoles(ctx context.Context, names []string) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) Upsert(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "password_hash"}),
		}).
		Create(u).Error
}

func (r *userRepo) UpdateFullName(ctx context.Context, id, fullName string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("full_name", fullName)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return nil
	})
}

func (r *userRepo) RoleNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("user_roles ur").
		Joins("JOIN roles r ON r.id = ur.role_id").
		Where("ur.user_id = ?", userID).
		Order("r.name").
		Pluck("r.name", &names).Error
	return names, err
}

func (r *userRepo) SetRoles(ctx context.Context, userID string, roleNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if len(roleNames) == 0 {
			return nil
		}
		res := tx.Exec(
			"INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name IN ?",
			userID, roleNames,
		)
		if res.Error != nil {
			return res.Error
		}
		if int(res.RowsAffected) != len(roleNames) {
			return fmt.Errorf("unknown role in %v", roleNames)
		}
		return nil
	})
}

func (r *userRepo) ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error) {
	var rows []models.UserWithRoles
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id, u.email, u.full_name, u.created_at, " +
			"COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles").
		Joins("LEFT JOIN user_roles ur ON ur.user_id = u.id").
		Joins("LEFT JOIN roles r ON r.id = ur.role_id").
		Group("u.id").
		Order("u.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *userRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var rows []models.Role
	err := r.db.WithContext(ctx).Order("name").Find(&rows).Error
	return rows, err
}

func (r *userRepo) EnsureRoles(ctx context.Context, names []string) error {
	rows := make([]models.Role, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.Role{Name: n})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
}
