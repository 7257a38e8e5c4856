package backend

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

func TestAuth_RegisterActivateSignIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auth := NewAuthService(h.client)

	user, err := auth.Register(ctx, RegisterRequest{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Password:  "longenough1",
		Interests: []string{"football"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsActive)

	_, err = auth.SignIn(ctx, "ada@example.com", "longenough1")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusOf(err))

	msg, err := auth.Activate(ctx, h.srv.ActivationToken("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Account activated successfully", msg)

	tok, err := auth.SignIn(ctx, "ada@example.com", "longenough1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok.AccessToken, "tok-"))
	assert.Equal(t, 1, h.srv.Count(http.MethodPost, "/auth/login/form"))
}

func TestAuth_SignInWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)

	_, err := NewAuthService(h.client).SignIn(context.Background(), "ada@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
	assert.Equal(t, "Incorrect email or password", api.MessageOf(err))
	assert.Equal(t, 0, h.client.Loading().Count())
}

func TestAuth_LoginJSON(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)

	tok, err := NewAuthService(h.client).Login(context.Background(), "ada@example.com", "longenough1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)

	_, err := NewAuthService(h.client).Register(context.Background(), RegisterRequest{
		Email: "ada@example.com", Password: "longenough1",
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", api.MessageOf(err))
}

func TestAuth_ActivateInvalid(t *testing.T) {
	h := newHarness(t)
	_, err := NewAuthService(h.client).Activate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
}

func TestUsers_ProfileFlows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, token := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	users := NewUserService(h.client)

	t.Run("me with explicit token", func(t *testing.T) {
		me, err := users.Me(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "Ada Obi", me.FullName())
	})

	t.Run("me without a session", func(t *testing.T) {
		_, err := users.Me(ctx, "bogus")
		require.Error(t, err)
		assert.True(t, api.IsUnauthorized(err))
	})

	h.signIn(token)

	t.Run("update", func(t *testing.T) {
		updated, err := users.UpdateMe(ctx, ProfileUpdate{Bio: ptr("Left back")})
		require.NoError(t, err)
		assert.Equal(t, "Left back", updated.Bio)
		assert.Equal(t, "Ada", updated.FirstName)
	})

	t.Run("change password", func(t *testing.T) {
		err := users.ChangePassword(ctx, PasswordChange{OldPassword: "wrong", NewPassword: "newpassword", ConfirmPassword: "newpassword"})
		require.Error(t, err)
		assert.Equal(t, "Incorrect password", api.MessageOf(err))

		require.NoError(t, users.ChangePassword(ctx, PasswordChange{
			OldPassword: "longenough1", NewPassword: "newpassword", ConfirmPassword: "newpassword",
		}))
		assert.Equal(t, "newpassword", h.srv.Password("ada@example.com"))
	})

	t.Run("upload image", func(t *testing.T) {
		url, err := users.UploadProfileImage(ctx, "me.png", strings.NewReader("PNG"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.turnupspot.test/profiles/me.png", url)
		assert.Equal(t, "PNG", h.srv.LastUpload("file"))
	})

	t.Run("deactivate", func(t *testing.T) {
		require.NoError(t, users.DeleteMe(ctx))
		u, ok := h.srv.UserByEmail("ada@example.com")
		require.True(t, ok)
		assert.False(t, u.IsActive)

		_, err := users.Me(ctx, token)
		assert.True(t, api.IsUnauthorized(err))
	})
}

func TestVendors_CreateWithExplicitToken(t *testing.T) {
	h := newHarness(t)
	_, token := h.srv.AddUser("shop@example.com", "longenough1", "Shop", "Owner", domain.RoleVendor)

	v, err := NewVendorService(h.client).Create(context.Background(), token, domain.Vendor{
		BusinessName: "Kit Store",
		BusinessType: "retail",
		Description:  "Boots and balls",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kit Store", v.BusinessName)
	require.Len(t, h.srv.Vendors(), 1)

	reqs := h.srv.Requests()
	assert.Equal(t, "Bearer "+token, reqs[len(reqs)-1].Authorization)
}
