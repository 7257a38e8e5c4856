// Package backend binds the TurnUp Spot REST endpoints to typed methods
// over api.Client.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

// ErrNoAccessToken is returned when a login succeeds without a token
var ErrNoAccessToken = errors.New("no access token received")

const loginFormPath = "/auth/login/form"

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Interests   []string    `json:"interests,omitempty"`
	Role        domain.Role `json:"role,omitempty"`
}

type AuthService struct {
	client *api.Client
}

func NewAuthService(client *api.Client) *AuthService {
	return &AuthService{client: client}
}

// Register creates an inactive account; the backend emails an activation link
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.Post(ctx, "/auth/register", req, &user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token through the JSON endpoint
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Token, error) {
	body := map[string]string{"email": email, "password": password}
	var tok domain.Token
	if _, err := s.client.Post(ctx, "/auth/login", body, &tok); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return &tok, nil
}

// SignIn uses the OAuth2 password grant on the form endpoint
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Token, error) {
	tokenURL, err := s.client.URL(loginFormPath)
	if err != nil {
		return nil, err
	}
	cfg := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client.Instrumented())
	tok, err := cfg.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", s.client.TokenError(ctx, loginFormPath, err))
	}
	if tok.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return &domain.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

// Activate confirms an account from the emailed activation token
func (s *AuthService) Activate(ctx context.Context, token string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	path := "/auth/activate?token=" + url.QueryEscape(token)
	if _, err := s.client.Get(ctx, path, &out); err != nil {
		return "", fmt.Errorf("activate: %w", err)
	}
	return out.Message, nil
}
