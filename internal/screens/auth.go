package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/forms"
	"github.com/turnupspot/turnupspot-client/internal/nav"
	"github.com/turnupspot/turnupspot-client/internal/notify"
)

// Auth holds the sign-in, signup, activation and sign-out flows
type Auth struct {
	deps *Deps
}

func NewAuth(deps *Deps) *Auth {
	return &Auth{deps: deps}
}

// SignIn exchanges credentials for a token, installs it and goes home
func (s *Auth) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "sign_in",
		Do: func(ctx context.Context) error {
			token, err := s.deps.Auth.SignIn(ctx, email, password)
			if err != nil {
				return err
			}
			return s.deps.Session.SetToken(ctx, token.AccessToken)
		},
		Apply:   func() { s.deps.Nav.Navigate(nav.Home) },
		Success: "Signed in successfully",
		Failure: "Invalid email or password",
	})
}

func (s *Auth) Signup(ctx context.Context, d forms.UserSignupDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "sign_up",
		Do: func(ctx context.Context) error {
			_, err := s.deps.Auth.Register(ctx, d.Request())
			return err
		},
		Apply:   func() { s.deps.Nav.Navigate(nav.SignIn) },
		Success: "Registration successful! Please sign in.",
		Failure: "Registration failed",
	})
}

// VendorSignup registers a vendor account, then creates its business
// profile with the fresh token. The session is not signed in.
func (s *Auth) VendorSignup(ctx context.Context, d forms.VendorSignupDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "vendor_sign_up",
		Do: func(ctx context.Context) error {
			acct := d.Account()
			if _, err := s.deps.Auth.Register(ctx, acct); err != nil {
				return err
			}
			token, err := s.deps.Auth.Login(ctx, acct.Email, acct.Password)
			if err != nil {
				return fmt.Errorf("vendor login: %w", err)
			}
			_, err = s.deps.Vendors.Create(ctx, token.AccessToken, d.Vendor())
			return err
		},
		Apply:   func() { s.deps.Nav.Navigate(nav.SignIn) },
		Success: "Vendor registration successful! You can now log in.",
		Failure: "Vendor registration failed",
	})
}

// Activate confirms an emailed activation token
func (s *Auth) Activate(ctx context.Context, token string) error {
	var message string
	err := s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "activate_account",
		Do: func(ctx context.Context) error {
			m, err := s.deps.Auth.Activate(ctx, token)
			message = m
			return err
		},
		Apply:   func() { s.deps.Nav.Navigate(nav.SignIn) },
		Failure: "Activation failed",
	})
	if err == nil {
		if message == "" {
			message = "Account activated successfully"
		}
		notify.Success(s.deps.notifier(), message)
	}
	return err
}

func (s *Auth) Logout(ctx context.Context) {
	s.deps.Session.Logout(ctx)
}
