package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/keyring"
	"github.com/DarkZangetsu/medcare/internal/storage/postgres"
)

// KeyringSetCmd stores the database connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !strings.HasPrefix(cmd.ConnectionString, "postgres://") &&
		!strings.HasPrefix(cmd.ConnectionString, "postgresql://") &&
		!strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Println("✓ Connection string stored successfully in OS keyring")
	fmt.Println("  You can now use medcare without the --config flag")
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No connection string stored in keyring.")
			return nil
		}
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	fmt.Printf("Connection string: %s\n", maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string: %w", err)
	}
	fmt.Println("✓ Connection string removed from OS keyring")
	return nil
}

// KeyringTwilioCmd stores the Twilio auth token used by the SMS channel.
type KeyringTwilioCmd struct {
	Token string `arg:"" help:"Twilio auth token."`
}

func (cmd *KeyringTwilioCmd) Run(ctx *cli.Context) error {
	if strings.TrimSpace(cmd.Token) == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.SetTwilioAuthToken(cmd.Token); err != nil {
		return fmt.Errorf("failed to store Twilio token: %w", err)
	}
	fmt.Println("✓ Twilio auth token stored in OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return nil
	}
	fmt.Println("✓ OS keyring is available")

	entries := []struct {
		label string
		get   func() (string, error)
	}{
		{"Database connection", keyring.GetConnectionString},
		{"API session", keyring.GetToken},
		{"Twilio auth token", keyring.GetTwilioAuthToken},
	}
	for _, e := range entries {
		if _, err := e.get(); err == nil {
			fmt.Printf("  %-20s stored\n", e.label+":")
		} else {
			fmt.Printf("  %-20s not stored\n", e.label+":")
		}
	}
	return nil
}

// maskPassword hides the password of a postgres URL or key=value string.
func maskPassword(connStr string) string {
	if strings.Contains(connStr, "://") {
		schemeEnd := strings.Index(connStr, "://") + 3
		at := strings.LastIndex(connStr, "@")
		if at > schemeEnd {
			userInfo := connStr[schemeEnd:at]
			if colon := strings.Index(userInfo, ":"); colon >= 0 {
				return connStr[:schemeEnd] + userInfo[:colon] + ":****" + connStr[at:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, p := range parts {
		if strings.HasPrefix(p, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
