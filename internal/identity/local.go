package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/utils"
)

// LocalUserStore is the subset of the user repository the local provider needs.
type LocalUserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// LocalProvider keeps bcrypt hashes in the users table and signs its own
// tokens. It is meant for development and self-hosted installs.
type LocalProvider struct {
	users LocalUserStore
	token TokenConfig
	now   func() time.Time
}

func NewLocalProvider(users LocalUserStore, token TokenConfig) *LocalProvider {
	return &LocalProvider{users: users, token: token, now: time.Now}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "LocalProvider.SignIn"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid login credentials", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if !utils.PasswordMatches(u.PasswordHash, password) {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid login credentials", nil)
	}

	iu := User{ID: u.ID, Email: u.Email, FullName: u.FullName}
	tok, exp, err := IssueToken(p.token, iu, p.now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &Session{AccessToken: tok, TokenType: "bearer", ExpiresAt: exp, User: iu}, nil
}

// SignOut is a no-op: local tokens are stateless and expire on their own.
func (p *LocalProvider) SignOut(context.Context, string) error { return nil }

func (p *LocalProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	const op = "LocalProvider.GetUser"

	claims, err := ParseToken(p.token, accessToken)
	if err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid token", err)
	}
	u, err := p.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "user no longer exists", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return &User{ID: u.ID, Email: u.Email, FullName: u.FullName}, nil
}

func (p *LocalProvider) CreateUser(ctx context.Context, email, password, fullName string) (*User, error) {
	const op = "LocalProvider.CreateUser"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is required", nil)
	}
	if len(password) < MinPasswordLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "password is too short", nil)
	}
	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "a user with this email already exists", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}
	row := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.users.Upsert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store user", err)
	}
	return &User{ID: row.ID, Email: row.Email, FullName: row.FullName}, nil
}

func (p *LocalProvider) DeleteUser(ctx context.Context, userID string) error {
	const op = "LocalProvider.DeleteUser"
	if err := p.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete user", err)
	}
	return nil
}

func (p *LocalProvider) UpdateUser(ctx context.Context, userID string, upd UserUpdate) error {
	const op = "LocalProvider.UpdateUser"

	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if upd.FullName != nil {
		u.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.Password != nil {
		if len(*upd.Password) < MinPasswordLength {
			return utils.E(utils.CodeInvalidArgument, op, "password is too short", nil)
		}
		if u.PasswordHash, err = utils.HashPassword(*upd.Password); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to hash password", err)
		}
	}
	if err := p.users.Upsert(ctx, u); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update user", err)
	}
	return nil
}
