package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/cli/account"
	"github.com/DarkZangetsu/medcare/internal/cli/backups"
	"github.com/DarkZangetsu/medcare/internal/cli/consults"
	"github.com/DarkZangetsu/medcare/internal/cli/journal"
	"github.com/DarkZangetsu/medcare/internal/cli/reminders"
	"github.com/DarkZangetsu/medcare/internal/cli/settings"
	"github.com/DarkZangetsu/medcare/internal/cli/system"
	"github.com/DarkZangetsu/medcare/internal/config"
	"github.com/DarkZangetsu/medcare/internal/constants"
	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/keyring"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/storage"
	"github.com/DarkZangetsu/medcare/internal/storage/postgres"
	"github.com/DarkZangetsu/medcare/internal/storage/sqlite"
)

var CLI struct {
	Version     kong.VersionFlag
	Config      string `help:"Database file path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string." type:"string" default:"${config_path}"`
	DBKeyring   bool   `name:"db-keyring" help:"Use the PostgreSQL connection string stored in the OS keyring."`
	SettingsDir string `help:"Directory searched for medcare.yaml (defaults to the database directory)." type:"path"`
	Debug       bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize medcare storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Notify  system.NotifyCmd  `cmd:"" help:"Deliver due notifications once."`
	Daemon  system.DaemonCmd  `cmd:"" help:"Deliver notifications continuously."`

	Reminder struct {
		Add      reminders.AddCmd      `cmd:"" help:"Create a reminder."`
		List     reminders.ListCmd     `cmd:"" help:"List reminders."`
		Edit     reminders.EditCmd     `cmd:"" help:"Edit a reminder."`
		Toggle   reminders.ToggleCmd   `cmd:"" help:"Activate or deactivate a reminder."`
		Delete   reminders.DeleteCmd   `cmd:"" help:"Delete a reminder."`
		Upcoming reminders.UpcomingCmd `cmd:"" help:"Show the next reminders." default:"1"`
	} `cmd:"" help:"Manage medication, appointment and analysis reminders."`

	Journal struct {
		Note    journal.NoteCmd    `cmd:"" help:"Add a note."`
		Measure journal.MeasureCmd `cmd:"" help:"Record a measurement."`
		Photo   journal.PhotoCmd   `cmd:"" help:"Attach a photo."`
		List    journal.ListCmd    `cmd:"" help:"List journal entries." default:"1"`
		Delete  journal.DeleteCmd  `cmd:"" help:"Delete a journal entry."`
	} `cmd:"" help:"Manage the health journal."`

	Consult struct {
		Doctors   consults.DoctorsCmd   `cmd:"" help:"List doctors."`
		Start     consults.StartCmd     `cmd:"" help:"Start a consultation with a doctor."`
		List      consults.ListCmd      `cmd:"" help:"List consultations." default:"1"`
		Show      consults.ShowCmd      `cmd:"" help:"Show a consultation with its messages."`
		Message   consults.MessageCmd   `cmd:"" help:"Send a message in a consultation."`
		Status    consults.StatusCmd    `cmd:"" help:"Update a consultation status."`
		Pay       consults.PayCmd       `cmd:"" help:"Pay for a consultation with mobile money."`
		Pdf       consults.PdfCmd       `cmd:"" help:"Download a consultation report."`
		Documents consults.DocumentsCmd `cmd:"" help:"List downloaded reports."`
		Triage    consults.TriageCmd    `cmd:"" help:"Ask for an AI triage of symptoms."`
	} `cmd:"" help:"Manage teleconsultations."`

	Login    account.LoginCmd    `cmd:"" help:"Log in to the MedCare server."`
	Register account.RegisterCmd `cmd:"" help:"Create a MedCare account."`
	Logout   account.LogoutCmd   `cmd:"" help:"Log out and cancel pending notifications."`
	Status   account.StatusCmd   `cmd:"" help:"Show the current session."`
	Profile  account.ProfileCmd  `cmd:"" help:"Update the patient profile."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`

	Backup struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Twilio system.KeyringTwilioCmd `cmd:"" help:"Store the Twilio auth token."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report keyring availability."`
	} `cmd:"keyring" help:"Manage secrets in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Patient companion: medication reminders, health journal and teleconsultations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	store, err := openStore()
	if err != nil {
		apperrors.Fatal(err)
	}

	configDir := CLI.SettingsDir
	if configDir == "" {
		configDir = defaultConfigDir(store)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		apperrors.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(ctx, store, cfg)

	if needsStore(kctx) {
		if err := store.Load(); err != nil {
			stop()
			apperrors.Fatal(err)
		}
	}

	runErr := kctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		logger.Warn("Failed to close resources", "error", err)
	}
	if runErr != nil {
		stop()
		apperrors.Fatal(runErr)
	}
}

// needsStore reports whether the selected command runs against a loaded
// store. init creates the store itself and keyring commands never touch it.
func needsStore(kctx *kong.Context) bool {
	cmd := kctx.Command()
	return cmd != "init" && !strings.HasPrefix(cmd, "keyring")
}

func openStore() (storage.Provider, error) {
	connStr := CLI.Config
	if CLI.DBKeyring {
		s, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no connection string in keyring; run 'medcare keyring set' first")
			}
			return nil, err
		}
		connStr = s
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") || CLI.DBKeyring {
		if _, err := postgres.ValidateConnString(connStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w; store the password in PGPASSWORD or .pgpass instead", err)
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}
	return sqlite.NewStore(expandHome(connStr)), nil
}

func defaultConfigDir(store storage.Provider) string {
	if path := store.GetConfigPath(); path != "postgresql" {
		return filepath.Dir(path)
	}
	return filepath.Dir(expandHome(constants.DefaultConfigPath))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
