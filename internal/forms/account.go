package forms

import (
	"strings"

	"github.com/turnupspot/turnupspot-client/internal/backend"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

// InterestOptions are the interests offered at user signup
var InterestOptions = []string{
	"Sports & Recreation",
	"Music & Concerts",
	"Food & Dining",
	"Arts & Culture",
	"Technology",
	"Business & Networking",
	"Health & Wellness",
	"Education",
}

type UserSignupDraft struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
	// DateOfBirth is YYYY-MM-DD
	DateOfBirth string
	Interests   []string
}

func (d UserSignupDraft) ToggleInterest(interest string) UserSignupDraft {
	d.Interests = Toggle(d.Interests, interest)
	return d
}

func (d UserSignupDraft) Validate() error {
	var v ValidationError
	if err := CheckPassword(d.Password, d.ConfirmPassword); err != nil {
		v.add("password", err.Error(), err)
	}
	v.require("first_name", "First name", d.FirstName)
	v.require("last_name", "Last name", d.LastName)
	v.require("email", "Email", d.Email)
	return v.err()
}

// Request is the registration payload
func (d UserSignupDraft) Request() backend.RegisterRequest {
	req := backend.RegisterRequest{
		FirstName:   strings.TrimSpace(d.FirstName),
		LastName:    strings.TrimSpace(d.LastName),
		Email:       strings.TrimSpace(d.Email),
		Password:    d.Password,
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Interests:   d.Interests,
		Role:        domain.RoleUser,
	}
	if d.DateOfBirth != "" {
		req.DateOfBirth = d.DateOfBirth + "T00:00:00"
	}
	return req
}

type VendorSignupDraft struct {
	BusinessName    string
	Email           string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
	BusinessType    string
	Description     string
}

func (d VendorSignupDraft) Validate() error {
	var v ValidationError
	if err := CheckPassword(d.Password, d.ConfirmPassword); err != nil {
		v.add("password", err.Error(), err)
	}
	v.require("business_name", "Business name", d.BusinessName)
	v.require("email", "Email", d.Email)
	v.require("business_type", "Business type", d.BusinessType)
	return v.err()
}

// Account is the user registration behind a vendor. The backend keeps
// personal names, so the business name stands in for both.
func (d VendorSignupDraft) Account() backend.RegisterRequest {
	name := strings.TrimSpace(d.BusinessName)
	return backend.RegisterRequest{
		FirstName:   name,
		LastName:    name,
		Email:       strings.TrimSpace(d.Email),
		Password:    d.Password,
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Role:        domain.RoleVendor,
	}
}

func (d VendorSignupDraft) Vendor() domain.Vendor {
	return domain.Vendor{
		BusinessName:  strings.TrimSpace(d.BusinessName),
		BusinessType:  strings.TrimSpace(d.BusinessType),
		Description:   strings.TrimSpace(d.Description),
		BusinessPhone: strings.TrimSpace(d.PhoneNumber),
		BusinessEmail: strings.TrimSpace(d.Email),
	}
}

// ProfileDraft is the editable part of the signed-in profile
type ProfileDraft struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Bio         string
}

func ProfileFrom(u domain.User) ProfileDraft {
	return ProfileDraft{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Bio:         u.Bio,
	}
}

func (d ProfileDraft) Validate() error {
	var v ValidationError
	v.require("first_name", "First name", d.FirstName)
	v.require("last_name", "Last name", d.LastName)
	return v.err()
}

func (d ProfileDraft) Update() backend.ProfileUpdate {
	first, last := strings.TrimSpace(d.FirstName), strings.TrimSpace(d.LastName)
	phone, bio := strings.TrimSpace(d.PhoneNumber), strings.TrimSpace(d.Bio)
	return backend.ProfileUpdate{FirstName: &first, LastName: &last, PhoneNumber: &phone, Bio: &bio}
}

type PasswordChangeDraft struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

func (d PasswordChangeDraft) Validate() error {
	var v ValidationError
	switch err := CheckPassword(d.NewPassword, d.ConfirmPassword); err {
	case nil:
	case ErrPasswordMismatch:
		v.add("new_password", "New passwords do not match.", err)
	default:
		v.add("new_password", "Password must be at least 8 characters long.", err)
	}
	v.require("old_password", "Current password", d.OldPassword)
	return v.err()
}

func (d PasswordChangeDraft) Request() backend.PasswordChange {
	return backend.PasswordChange{
		OldPassword:     d.OldPassword,
		NewPassword:     d.NewPassword,
		ConfirmPassword: d.ConfirmPassword,
	}
}
