package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yoockh/recruitportal/internal/utils"
)

type GoTrueConfig struct {
	URL            string // project URL, e.g. https://xyz.supabase.co
	AnonKey        string
	ServiceRoleKey string // required for the admin endpoints
	Timeout        time.Duration
}

// GoTrueProvider talks to the Supabase auth REST API.
type GoTrueProvider struct {
	cfg  GoTrueConfig
	base string
	http *http.Client
}

func NewGoTrueProvider(cfg GoTrueConfig) *GoTrueProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &GoTrueProvider{
		cfg:  cfg,
		base: strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u gotrueUser) toUser() User {
	name, _ := u.UserMetadata["full_name"].(string)
	return User{ID: u.ID, Email: u.Email, FullName: name}
}

type gotrueSession struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        gotrueUser `json:"user"`
}

type gotrueError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Err              string `json:"error"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Message, e.ErrorDescription, e.Err} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "GoTrueProvider.SignIn"

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	var out gotrueSession
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	if err := p.do(ctx, op, http.MethodPost, "/token?grant_type=password", p.cfg.AnonKey, "", body, &out); err != nil {
		// bad credentials come back as 400 invalid_grant
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid login credentials", err)
		}
		return nil, err
	}
	return &Session{
		AccessToken: out.AccessToken,
		TokenType:   out.TokenType,
		ExpiresAt:   time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
		User:        out.User.toUser(),
	}, nil
}

func (p *GoTrueProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.do(ctx, "GoTrueProvider.SignOut", http.MethodPost, "/logout", p.cfg.AnonKey, accessToken, nil, nil)
}

func (p *GoTrueProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var out gotrueUser
	if err := p.do(ctx, "GoTrueProvider.GetUser", http.MethodGet, "/user", p.cfg.AnonKey, accessToken, nil, &out); err != nil {
		return nil, err
	}
	u := out.toUser()
	return &u, nil
}

func (p *GoTrueProvider) CreateUser(ctx context.Context, email, password, fullName string) (*User, error) {
	const op = "GoTrueProvider.CreateUser"

	if strings.TrimSpace(email) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is required", nil)
	}
	if len(password) < MinPasswordLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "password is too short", nil)
	}

	body := map[string]any{
		"email":         strings.TrimSpace(email),
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]any{"full_name": fullName},
	}
	var out gotrueUser
	if err := p.admin(ctx, op, http.MethodPost, "/admin/users", body, &out); err != nil {
		return nil, err
	}
	u := out.toUser()
	return &u, nil
}

func (p *GoTrueProvider) DeleteUser(ctx context.Context, userID string) error {
	return p.admin(ctx, "GoTrueProvider.DeleteUser", http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil, nil)
}

func (p *GoTrueProvider) UpdateUser(ctx context.Context, userID string, upd UserUpdate) error {
	const op = "GoTrueProvider.UpdateUser"

	body := map[string]any{}
	if upd.FullName != nil {
		body["user_metadata"] = map[string]any{"full_name": *upd.FullName}
	}
	if upd.Password != nil {
		if len(*upd.Password) < MinPasswordLength {
			return utils.E(utils.CodeInvalidArgument, op, "password is too short", nil)
		}
		body["password"] = *upd.Password
	}
	if len(body) == 0 {
		return nil
	}
	return p.admin(ctx, op, http.MethodPut, "/admin/users/"+url.PathEscape(userID), body, nil)
}

func (p *GoTrueProvider) admin(ctx context.Context, op, method, path string, in, out any) error {
	if p.cfg.ServiceRoleKey == "" {
		return utils.E(utils.CodeInternal, op, "SUPABASE_SERVICE_ROLE_KEY is not set", nil)
	}
	return p.do(ctx, op, method, path, p.cfg.ServiceRoleKey, p.cfg.ServiceRoleKey, in, out)
}

func (p *GoTrueProvider) do(ctx context.Context, op, method, path, apiKey, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to encode request", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.base+path, body)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to build request", err)
	}
	req.Header.Set("apikey", apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "identity provider unreachable", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		var ge gotrueError
		_ = json.Unmarshal(raw, &ge)
		msg := ge.text()
		if msg == "" {
			msg = fmt.Sprintf("identity provider returned %d", resp.StatusCode)
		}
		return utils.E(codeForStatus(resp.StatusCode), op, msg, nil)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to decode response", err)
		}
	}
	return nil
}

func codeForStatus(status int) utils.Code {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return utils.CodeUnauthorized
	case status == http.StatusNotFound:
		return utils.CodeNotFound
	case status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return utils.CodeConflict
	case status >= 500:
		return utils.CodeUnavailable
	}
	return utils.CodeInvalidArgument
}
