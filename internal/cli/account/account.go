package account

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/DarkZangetsu/medcare/internal/api"
	"github.com/DarkZangetsu/medcare/internal/cli"
)

type LoginCmd struct {
	Phone    string `help:"Phone number of the account." required:""`
	Password string `help:"Account password, prompted when omitted." env:"MEDCARE_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	password, err := promptPassword(c.Password)
	if err != nil {
		return err
	}

	user, err := ctx.Session.Login(ctx.Context(), ctx.API, c.Phone, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("✓ Logged in as %s\n", displayName(user.Name, user.Phone))
	return nil
}

type RegisterCmd struct {
	Phone    string `help:"Phone number of the new account." required:""`
	Name     string `help:"Full name."`
	Age      *int   `help:"Age in years."`
	Password string `help:"Account password, prompted when omitted." env:"MEDCARE_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	password, err := promptPassword(c.Password)
	if err != nil {
		return err
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	user, err := ctx.Session.Register(ctx.Context(), ctx.API, api.RegisterInput{
		Phone:    c.Phone,
		Password: password,
		Name:     c.Name,
		Age:      c.Age,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Printf("✓ Account created for %s\n", displayName(user.Name, user.Phone))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.Logout(ctx.Context(), ctx.Scheduler); err != nil {
		fmt.Printf("⚠ Logged out, but pending notifications could not all be cancelled: %v\n", err)
		return nil
	}
	fmt.Println("✓ Logged out")
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Session.Status()
	if err != nil {
		return err
	}
	if !st.LoggedIn {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("Logged in as: %s\n", displayName(st.Subject, "unknown"))
	if !st.ExpiresAt.IsZero() {
		state := "valid"
		if st.Expired {
			state = "expired"
		}
		fmt.Printf("Session:      %s until %s\n", state, st.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

type ProfileCmd struct {
	Name        *string `help:"New full name."`
	Age         *int    `help:"New age in years."`
	Pathologies string  `help:"Comma-separated list of chronic conditions."`
}

func (c *ProfileCmd) input() (api.ProfileInput, bool) {
	in := api.ProfileInput{Name: c.Name, Age: c.Age}
	for _, p := range strings.Split(c.Pathologies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			in.Pathologies = append(in.Pathologies, p)
		}
	}
	return in, in.Name != nil || in.Age != nil || len(in.Pathologies) > 0
}

func (c *ProfileCmd) Run(ctx *cli.Context) error {
	in, changed := c.input()
	if !changed {
		fmt.Println("No changes specified.")
		return nil
	}

	user, err := ctx.API.UpdateProfile(ctx.Context(), in)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	fmt.Printf("✓ Profile updated: %s\n", displayName(user.Name, user.Phone))
	if len(user.Pathologies) > 0 {
		fmt.Printf("  Conditions: %s\n", strings.Join(user.Pathologies, ", "))
	}
	return nil
}

func promptPassword(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	var password string
	err := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
