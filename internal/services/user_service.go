package services

import (
	"context"
	"errors"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/identity"
	"github.com/yoockh/recruitportal/internal/models"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

type CreateUserInput struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

type UpdateUserInput struct {
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
	Password *string  `json:"password,omitempty"`
}

type LoginResult struct {
	Session   *identity.Session `json:"session"`
	Principal access.Principal  `json:"principal"`
	Views     []access.Action   `json:"views"`
}

type UserService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	// Principal resolves the roles of an authenticated user id.
	Principal(ctx context.Context, userID string) (access.Principal, error)

	List(ctx context.Context, actor access.Principal) ([]models.UserWithRoles, error)
	Roles(ctx context.Context, actor access.Principal) ([]models.Role, error)
	Create(ctx context.Context, actor access.Principal, in CreateUserInput) (*models.User, error)
	Update(ctx context.Context, actor access.Principal, userID string, in UpdateUserInput) error
	Delete(ctx context.Context, actor access.Principal, userID string) error
}

type userService struct {
	users pgrepo.UserRepository
	idp   identity.Provider
	log   *logrus.Logger
}

func NewUserService(users pgrepo.UserRepository, idp identity.Provider, log *logrus.Logger) UserService {
	return &userService{users: users, idp: idp, log: defaultLogger(log)}
}

func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "UserService.Login"

	sess, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMirror(ctx, sess.User); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sync user", err)
	}
	p, err := s.Principal(ctx, sess.User.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: sess, Principal: p, Views: p.Views()}, nil
}

func (s *userService) Logout(ctx context.Context, accessToken string) error {
	const op = "UserService.Logout"
	if strings.TrimSpace(accessToken) == "" {
		return utils.E(utils.CodeUnauthorized, op, "missing bearer token", nil)
	}
	return s.idp.SignOut(ctx, accessToken)
}

func (s *userService) Principal(ctx context.Context, userID string) (access.Principal, error) {
	const op = "UserService.Principal"

	if userID == "" {
		return access.Principal{}, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return access.Principal{}, utils.E(utils.CodeUnauthorized, op, "account is not provisioned", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return access.Principal{}, utils.E(utils.CodeUnauthorized, op, "account is not provisioned", err)
		}
		return access.Principal{}, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	names, err := s.users.RoleNames(ctx, userID)
	if err != nil {
		return access.Principal{}, utils.E(utils.CodeInternal, op, "failed to load roles", err)
	}

	p := access.Principal{UserID: u.ID, Email: u.Email, FullName: u.FullName, Roles: []access.Role{}}
	for _, n := range names {
		if r, ok := access.ParseRole(n); ok {
			p.Roles = append(p.Roles, r)
		}
	}
	return p, nil
}

func (s *userService) List(ctx context.Context, actor access.Principal) ([]models.UserWithRoles, error) {
	const op = "UserService.List"
	if err := access.Authorize(actor, access.ManageUsers, op); err != nil {
		return nil, err
	}
	out, err := s.users.ListWithRoles(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	return out, nil
}

func (s *userService) Roles(ctx context.Context, actor access.Principal) ([]models.Role, error) {
	const op = "UserService.Roles"
	if err := access.Authorize(actor, access.ManageUsers, op); err != nil {
		return nil, err
	}
	out, err := s.users.ListRoles(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list roles", err)
	}
	return out, nil
}

func (s *userService) Create(ctx context.Context, actor access.Principal, in CreateUserInput) (*models.User, error) {
	const op = "UserService.Create"
	if err := access.Authorize(actor, access.ManageUsers, op); err != nil {
		return nil, err
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Email == "" || in.FullName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and full_name are required", nil)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is not a valid address", err)
	}
	if len(in.Password) < identity.MinPasswordLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "password must be at least 6 characters", nil)
	}
	roles, err := parseRoles(op, in.Roles)
	if err != nil {
		return nil, err
	}

	iu, err := s.idp.CreateUser(ctx, in.Email, in.Password, in.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMirror(ctx, *iu); err != nil {
		s.rollbackIdentity(ctx, iu.ID)
		return nil, utils.E(utils.CodeInternal, op, "failed to store user", err)
	}
	if err := s.users.SetRoles(ctx, iu.ID, roles); err != nil {
		s.rollbackIdentity(ctx, iu.ID)
		return nil, utils.E(utils.CodeInternal, op, "failed to assign roles", err)
	}

	u, err := s.users.GetByID(ctx, iu.ID)
	if err != nil {
		return nil, wrapStore(op, "user", err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, actor access.Principal, userID string, in UpdateUserInput) error {
	const op = "UserService.Update"
	if err := access.Authorize(actor, access.ManageUsers, op); err != nil {
		return err
	}

	if err := checkID(op, "user", userID); err != nil {
		return err
	}
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return utils.E(utils.CodeInvalidArgument, op, "full_name is required", nil)
	}
	roles, err := parseRoles(op, in.Roles)
	if err != nil {
		return err
	}
	if userID == actor.UserID && !containsRole(roles, access.RoleMaster) && actor.HasRole(access.RoleMaster) {
		return utils.E(utils.CodeConflict, op, "you cannot remove your own Master role", nil)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return wrapStore(op, "user", err)
	}
	if err := s.idp.UpdateUser(ctx, userID, identity.UserUpdate{FullName: &in.FullName, Password: in.Password}); err != nil {
		return err
	}
	if err := s.users.UpdateFullName(ctx, userID, in.FullName); err != nil {
		return wrapStore(op, "user", err)
	}
	if err := s.users.SetRoles(ctx, userID, roles); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to assign roles", err)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, actor access.Principal, userID string) error {
	const op = "UserService.Delete"
	if err := access.Authorize(actor, access.ManageUsers, op); err != nil {
		return err
	}
	if err := checkID(op, "user", userID); err != nil {
		return err
	}
	if userID == actor.UserID {
		return utils.E(utils.CodeConflict, op, "you cannot delete your own account", nil)
	}

	if err := s.idp.DeleteUser(ctx, userID); err != nil && !utils.IsCode(err, utils.CodeNotFound) {
		return err
	}
	// the local provider already removed the row
	if err := s.users.Delete(ctx, userID); err != nil && !errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeInternal, op, "failed to delete user", err)
	}
	return nil
}

// ensureMirror creates the users row for an identity account if it is missing.
func (s *userService) ensureMirror(ctx context.Context, iu identity.User) error {
	_, err := s.users.GetByID(ctx, iu.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return err
	}
	return s.users.Upsert(ctx, &models.User{
		ID:        iu.ID,
		Email:     strings.ToLower(iu.Email),
		FullName:  iu.FullName,
		CreatedAt: utcNow(),
	})
}

func (s *userService) rollbackIdentity(ctx context.Context, userID string) {
	if err := s.idp.DeleteUser(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("orphaned identity account")
	}
}

func parseRoles(op string, raw []string) ([]string, error) {
	seen := map[access.Role]bool{}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		role, ok := access.ParseRole(r)
		if !ok {
			return nil, utils.E(utils.CodeInvalidArgument, op, "unknown role "+r, nil)
		}
		if !seen[role] {
			seen[role] = true
			out = append(out, string(role))
		}
	}
	if len(out) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one role is required", nil)
	}
	return out, nil
}

func containsRole(names []string, r access.Role) bool {
	for _, n := range names {
		if n == string(r) {
			return true
		}
	}
	return false
}
