package screens

import (
	"bytes"
	"context"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/forms"
	"github.com/turnupspot/turnupspot-client/internal/session"
)

// Profile edits the signed-in user. It reads the user from the session
// rather than fetching it again.
type Profile struct {
	deps *Deps
}

func NewProfile(deps *Deps) *Profile {
	return &Profile{deps: deps}
}

// User is the current profile, nil while the session is resolving
func (s *Profile) User() *domain.User { return s.deps.Session.User() }

// Draft seeds the edit form from the current profile
func (s *Profile) Draft() forms.ProfileDraft {
	if u := s.User(); u != nil {
		return forms.ProfileFrom(*u)
	}
	return forms.ProfileDraft{}
}

func (s *Profile) Save(ctx context.Context, d forms.ProfileDraft) error {
	if _, err := s.deps.requireToken(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "update_profile",
		Do: func(ctx context.Context) error {
			u, err := s.deps.Users.UpdateMe(ctx, d.Update())
			if err != nil {
				return err
			}
			return s.deps.Session.SetUser(u)
		},
		Success: "Profile updated successfully!",
		Failure: "Failed to update profile",
	})
}

func (s *Profile) ChangePassword(ctx context.Context, d forms.PasswordChangeDraft) error {
	if _, err := s.deps.requireToken(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "change_password",
		Do: func(ctx context.Context) error {
			return s.deps.Users.ChangePassword(ctx, d.Request())
		},
		Success: "Password updated successfully!",
		Failure: "Failed to update password",
	})
}

// UploadImage replaces the avatar and updates the session profile with the
// returned URL
func (s *Profile) UploadImage(ctx context.Context, filename string, content []byte) error {
	if _, err := s.deps.requireToken(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "upload_profile_image",
		Do: func(ctx context.Context) error {
			url, err := s.deps.Users.UploadProfileImage(ctx, filename, bytes.NewReader(content))
			if err != nil {
				return err
			}
			u := s.deps.Session.User()
			if u == nil {
				return session.ErrNoToken
			}
			u.ProfileImageURL = url
			return s.deps.Session.SetUser(u)
		},
		Success: "Profile image uploaded!",
		Failure: "Failed to upload image",
	})
}

// Deactivate deletes the account after confirmation and signs out
func (s *Profile) Deactivate(ctx context.Context) error {
	if _, err := s.deps.requireToken(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name:    "deactivate_account",
		Confirm: "Are you sure you want to deactivate your account?",
		Do:      s.deps.Users.DeleteMe,
		Apply:   func() { s.deps.Session.Logout(ctx) },
		Success: "Account deactivated.",
		Failure: "Failed to deactivate account",
	})
}
