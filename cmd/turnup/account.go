package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/internal/forms"
	"github.com/turnupspot/turnupspot-client/internal/screens"
	"github.com/turnupspot/turnupspot-client/internal/session"
)

var (
	signup   forms.UserSignupDraft
	vendor   forms.VendorSignupDraft
	profile  forms.ProfileDraft
	password forms.PasswordChangeDraft

	signinEmail    string
	signinPassword string
	interests      string
)

func init() {
	f := signupCmd.Flags()
	f.StringVar(&signup.FirstName, "first-name", "", "")
	f.StringVar(&signup.LastName, "last-name", "", "")
	f.StringVar(&signup.Email, "email", "", "")
	f.StringVar(&signup.Password, "password", "", "at least 8 characters")
	f.StringVar(&signup.ConfirmPassword, "confirm-password", "", "")
	f.StringVar(&signup.PhoneNumber, "phone", "", "")
	f.StringVar(&signup.DateOfBirth, "date-of-birth", "", "YYYY-MM-DD")
	f.StringVar(&interests, "interests", "", "comma separated, one of: "+strings.Join(forms.InterestOptions, ", "))

	f = vendorSignupCmd.Flags()
	f.StringVar(&vendor.BusinessName, "business-name", "", "")
	f.StringVar(&vendor.BusinessType, "business-type", "", "")
	f.StringVar(&vendor.Description, "description", "", "")
	f.StringVar(&vendor.Email, "email", "", "")
	f.StringVar(&vendor.Password, "password", "", "at least 8 characters")
	f.StringVar(&vendor.ConfirmPassword, "confirm-password", "", "")
	f.StringVar(&vendor.PhoneNumber, "phone", "", "")

	f = signinCmd.Flags()
	f.StringVar(&signinEmail, "email", "", "")
	f.StringVar(&signinPassword, "password", "", "")

	f = profileCmd.Flags()
	f.StringVar(&profile.FirstName, "first-name", "", "")
	f.StringVar(&profile.LastName, "last-name", "", "")
	f.StringVar(&profile.PhoneNumber, "phone", "", "")
	f.StringVar(&profile.Bio, "bio", "", "")

	f = passwordCmd.Flags()
	f.StringVar(&password.OldPassword, "old", "", "current password")
	f.StringVar(&password.NewPassword, "new", "", "new password")
	f.StringVar(&password.ConfirmPassword, "confirm", "", "new password again")

	RootCmd.AddCommand(signupCmd, vendorSignupCmd, signinCmd, logoutCmd, whoamiCmd,
		profileCmd, passwordCmd, avatarCmd, deactivateCmd, activateCmd)
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a player account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := signup
		for _, i := range strings.Split(interests, ",") {
			if i = strings.TrimSpace(i); i != "" {
				d = d.ToggleInterest(i)
			}
		}
		return screens.NewAuth(deps()).Signup(cmd.Context(), d)
	},
}

var vendorSignupCmd = &cobra.Command{
	Use:   "vendor-signup",
	Short: "Register a vendor business",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return screens.NewAuth(deps()).VendorSignup(cmd.Context(), vendor)
	},
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and keep the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return screens.NewAuth(deps()).SignIn(cmd.Context(), signinEmail, signinPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		screens.NewAuth(deps()).Logout(cmd.Context())
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <token>",
	Short: "Activate an account from its emailed token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return screens.NewAuth(deps()).Activate(cmd.Context(), args[0])
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := deps().Session
		if store.State() != session.Authenticated {
			fmt.Fprintln(cmd.OutOrStdout(), store.State())
			return nil
		}
		u := store.User()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Name:\t%s\n", u.FullName())
		fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
		fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
		if u.PhoneNumber != "" {
			fmt.Fprintf(tw, "Phone:\t%s\n", u.PhoneNumber)
		}
		if u.Bio != "" {
			fmt.Fprintf(tw, "Bio:\t%s\n", u.Bio)
		}
		return tw.Flush()
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your profile; unset flags keep their value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := screens.NewProfile(deps())
		d := s.Draft()
		f := cmd.Flags()
		if f.Changed("first-name") {
			d.FirstName = profile.FirstName
		}
		if f.Changed("last-name") {
			d.LastName = profile.LastName
		}
		if f.Changed("phone") {
			d.PhoneNumber = profile.PhoneNumber
		}
		if f.Changed("bio") {
			d.Bio = profile.Bio
		}
		return s.Save(cmd.Context(), d)
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return screens.NewProfile(deps()).ChangePassword(cmd.Context(), password)
	},
}

var avatarCmd = &cobra.Command{
	Use:   "avatar <image>",
	Short: "Upload a profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return screens.NewProfile(deps()).UploadImage(cmd.Context(), filepath.Base(args[0]), content)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Deactivate your account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return screens.NewProfile(deps()).Deactivate(cmd.Context())
	},
}
