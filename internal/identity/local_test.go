package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/utils"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUserStore) Upsert(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

var testToken = TokenConfig{Secret: "test-secret", Issuer: "recruitportal", Audience: "authenticated", TTL: time.Hour}

func TestLocalProviderSignInRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(newFakeUserStore(), testToken)

	created, err := p.CreateUser(ctx, "Admin@Example.com", "secret123", "Site Admin")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.Email != "admin@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}

	sess, err := p.SignIn(ctx, "admin@example.com", "secret123")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if sess.AccessToken == "" || sess.User.ID != created.ID {
		t.Fatalf("unexpected session %+v", sess)
	}

	claims, err := ParseToken(testToken, sess.AccessToken)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if claims.Subject != created.ID || claims.FullName() != "Site Admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	u, err := p.GetUser(ctx, sess.AccessToken)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if u.Email != "admin@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestLocalProviderRejectsBadPassword(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(newFakeUserStore(), testToken)
	if _, err := p.CreateUser(ctx, "hr@example.com", "secret123", "HR"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	_, err := p.SignIn(ctx, "hr@example.com", "wrong-password")
	if !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	_, err = p.SignIn(ctx, "nobody@example.com", "secret123")
	if !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestLocalProviderDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(newFakeUserStore(), testToken)
	if _, err := p.CreateUser(ctx, "hr@example.com", "secret123", "HR"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := p.CreateUser(ctx, "hr@example.com", "secret456", "HR Two"); !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLocalProviderUpdatePassword(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(newFakeUserStore(), testToken)
	u, _ := p.CreateUser(ctx, "iv@example.com", "secret123", "Interviewer")

	pw := "new-secret"
	name := "Lead Interviewer"
	if err := p.UpdateUser(ctx, u.ID, UserUpdate{FullName: &name, Password: &pw}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	sess, err := p.SignIn(ctx, "iv@example.com", "new-secret")
	if err != nil {
		t.Fatalf("expected sign in with new password, got %v", err)
	}
	if sess.User.FullName != "Lead Interviewer" {
		t.Fatalf("expected updated name, got %q", sess.User.FullName)
	}

	if err := p.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := p.DeleteUser(ctx, u.ID); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseTokenRejectsWrongAudience(t *testing.T) {
	tok, _, err := IssueToken(testToken, User{ID: "u1"}, time.Now())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	cfg := testToken
	cfg.Audience = "someone-else"
	if _, err := ParseToken(cfg, tok); err != ErrTokenAudience {
		t.Fatalf("expected ErrTokenAudience, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok, _, err := IssueToken(testToken, User{ID: "u1"}, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := ParseToken(testToken, tok); err == nil {
		t.Fatal("expected expired token to fail")
	}
}
