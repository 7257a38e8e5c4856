package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

// ProfileUpdate is the body of PUT /users/me; nil fields are left unchanged
type ProfileUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

type PasswordChange struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserService struct {
	client *api.Client
}

func NewUserService(client *api.Client) *UserService {
	return &UserService{client: client}
}

// Me fetches the profile token belongs to. The token is passed explicitly
// because it is called while the session is still resolving it.
func (s *UserService) Me(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.Get(ctx, "/users/me", &user, api.WithBearer(token)); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateMe(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.Put(ctx, "/users/me", update, &user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

// DeleteMe deactivates the signed-in account
func (s *UserService) DeleteMe(ctx context.Context) error {
	if _, err := s.client.Delete(ctx, "/users/me", nil); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, req PasswordChange) error {
	if _, err := s.client.Post(ctx, "/users/change-password", req, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// UploadProfileImage stores a new avatar and returns its URL
func (s *UserService) UploadProfileImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	body := api.NewMultipart().File("file", filename, content)
	var out struct {
		URL string `json:"url"`
	}
	if _, err := s.client.Post(ctx, "/users/upload-profile-image", body, &out); err != nil {
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	return out.URL, nil
}
