package apitest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnupspot/turnupspot-client/internal/domain"
)

// AddUser seeds an active account and returns its bearer token
func (b *Backend) AddUser(email, password, first, last string, role domain.Role) (domain.User, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.newUserLocked(email, password, first, last, role)
	u.IsActive = true
	u.IsVerified = true
	return u.User, b.issueLocked(u)
}

// ActivationToken returns the pending activation token for email
func (b *Backend) ActivationToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.byEmail[strings.ToLower(email)]
	if u == nil {
		return ""
	}
	for tok, id := range b.pending {
		if id == u.ID {
			return tok
		}
	}
	return ""
}

// UserByEmail returns the stored profile for email
func (b *Backend) UserByEmail(email string) (domain.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.byEmail[strings.ToLower(email)]
	if u == nil {
		return domain.User{}, false
	}
	return u.User, true
}

// Password returns the stored password for email
func (b *Backend) Password(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u := b.byEmail[strings.ToLower(email)]; u != nil {
		return u.password
	}
	return ""
}

// Vendors returns every created vendor profile
func (b *Backend) Vendors() []domain.Vendor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Vendor(nil), b.vendors...)
}

// LastUpload returns the content of the last uploaded file for a field
func (b *Backend) LastUpload(field string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastImage[field]
}

func (b *Backend) newLocalID() domain.ID {
	id := b.nextID
	b.nextID++
	return domain.ID(fmt.Sprint(id))
}

func (b *Backend) newUserLocked(email, password, first, last string, role domain.Role) *user {
	if role == "" {
		role = domain.RoleUser
	}
	u := &user{
		User: domain.User{
			ID:        b.newLocalID(),
			Email:     email,
			FirstName: first,
			LastName:  last,
			Role:      role,
		},
		password: password,
	}
	b.users[u.ID] = u
	b.byEmail[strings.ToLower(email)] = u
	return u
}

func (b *Backend) issueLocked(u *user) string {
	if u.token != "" {
		delete(b.byToken, u.token)
	}
	u.token = "tok-" + uuid.NewString()
	b.byToken[u.token] = u
	return u.token
}

type registerReq struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	PhoneNumber string   `json:"phone_number"`
	DateOfBirth string   `json:"date_of_birth"`
	Interests   []string `json:"interests"`
	Role        string   `json:"role"`
}

func (b *Backend) registerAuth(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/register", b.register)
	auth.POST("/login", b.login)
	auth.POST("/login/form", b.loginForm)
	auth.GET("/activate", b.activate)

	users := api.Group("/users")
	users.GET("/me", b.me)
	users.PUT("/me", b.updateMe)
	users.DELETE("/me", b.deleteMe)
	users.POST("/change-password", b.changePassword)
	users.POST("/upload-profile-image", b.uploadProfileImage)

	api.POST("/vendors/", b.createVendor)
}

func (b *Backend) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body", "email"}, "msg": "field required", "type": "value_error.missing"},
		}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.byEmail[strings.ToLower(req.Email)] != nil {
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	}
	u := b.newUserLocked(req.Email, req.Password, req.FirstName, req.LastName, domain.Role(req.Role))
	u.PhoneNumber = req.PhoneNumber
	u.DateOfBirth = req.DateOfBirth
	b.pending["act-"+uuid.NewString()] = u.ID

	c.JSON(http.StatusOK, u.User)
}

func (b *Backend) authenticate(c *gin.Context, email, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.byEmail[strings.ToLower(email)]
	if u == nil || u.password != password {
		detail(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !u.IsActive && u.Role != domain.RoleVendor {
		detail(c, http.StatusForbidden, "Account is not activated. Please check your email.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": b.issueLocked(u), "token_type": "bearer"})
}

func (b *Backend) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.authenticate(c, req.Email, req.Password)
}

func (b *Backend) loginForm(c *gin.Context) {
	if c.PostForm("grant_type") != "" && c.PostForm("grant_type") != "password" {
		detail(c, http.StatusBadRequest, "unsupported grant type")
		return
	}
	b.authenticate(c, c.PostForm("username"), c.PostForm("password"))
}

func (b *Backend) activate(c *gin.Context) {
	token := c.Query("token")

	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.pending[token]
	if !ok {
		detail(c, http.StatusBadRequest, "Invalid or expired activation token")
		return
	}
	delete(b.pending, token)
	b.users[id].IsActive = true
	b.users[id].IsVerified = true
	c.JSON(http.StatusOK, gin.H{"message": "Account activated successfully"})
}

func (b *Backend) me(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, u.User)
}

func (b *Backend) updateMe(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	var req struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		PhoneNumber *string `json:"phone_number"`
		Bio         *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = *req.PhoneNumber
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	c.JSON(http.StatusOK, u.User)
}

func (b *Backend) deleteMe(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u.IsActive = false
	delete(b.byToken, u.token)
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

func (b *Backend) changePassword(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	var req struct {
		OldPassword     string `json:"old_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if req.OldPassword != u.password {
		detail(c, http.StatusBadRequest, "Incorrect password")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		detail(c, http.StatusBadRequest, "Passwords do not match")
		return
	}
	u.password = req.NewPassword
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (b *Backend) uploadProfileImage(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	f, err := fh.Open()
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()
	content, _ := io.ReadAll(f)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastImage["file"] = string(content)
	u.ProfileImageURL = "https://cdn.turnupspot.test/profiles/" + fh.Filename
	c.JSON(http.StatusOK, gin.H{"url": u.ProfileImageURL})
}

func (b *Backend) createVendor(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	var v domain.Vendor
	if err := c.ShouldBindJSON(&v); err != nil || v.BusinessName == "" {
		detail(c, http.StatusUnprocessableEntity, "business_name is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	v.ID = b.newLocalID()
	v.UserID = u.ID
	b.vendors = append(b.vendors, v)
	c.JSON(http.StatusOK, v)
}
