package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/DarkZangetsu/medcare/internal/api"
	"github.com/DarkZangetsu/medcare/internal/auth"
	"github.com/DarkZangetsu/medcare/internal/backup"
	"github.com/DarkZangetsu/medcare/internal/config"
	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/consultations"
	"github.com/DarkZangetsu/medcare/internal/documents"
	"github.com/DarkZangetsu/medcare/internal/journal"
	"github.com/DarkZangetsu/medcare/internal/keyring"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/notifier"
	"github.com/DarkZangetsu/medcare/internal/reminders"
	"github.com/DarkZangetsu/medcare/internal/storage"
	"github.com/DarkZangetsu/medcare/internal/utils"
)

// Context is the state container shared by every command.
type Context struct {
	Store         storage.Provider
	Config        *config.Config
	Session       *auth.Session
	API           *api.Client
	Scheduler     notifier.Scheduler
	Reminders     *reminders.Manager
	Journal       *journal.Journal
	Consultations *consultations.Store
	Documents     *documents.Downloader

	ctx context.Context
}

// NewContext wires the core components around store and cfg.
func NewContext(ctx context.Context, store storage.Provider, cfg *config.Config) *Context {
	session := auth.NewSession()
	client := api.NewClient(api.Options{
		URL:           cfg.API.URL,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.RatePerSecond,
	}, session)
	scheduler := NewScheduler(store, cfg)

	return &Context{
		Store:         store,
		Config:        cfg,
		Session:       session,
		API:           client,
		Scheduler:     scheduler,
		Reminders:     reminders.NewManager(client, scheduler, store),
		Journal:       journal.New(store),
		Consultations: consultations.NewStore(client, store),
		Documents:     documents.NewDownloader(cfg.Documents, cfg.API.Timeout),
		ctx:           ctx,
	}
}

// Context returns the context commands should pass to blocking calls.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Close releases every component. The store is closed last.
func (c *Context) Close() error {
	var errs []error
	if c.Reminders != nil {
		errs = append(errs, c.Reminders.Close())
	}
	if c.Journal != nil {
		errs = append(errs, c.Journal.Close())
	}
	if closer, ok := c.Scheduler.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// RedisOpt returns the asynq connection options for the configured Redis.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// NewScheduler returns the notification scheduler for the configured backend.
func NewScheduler(store storage.Provider, cfg *config.Config) notifier.Scheduler {
	if cfg.Notifier.Backend == constants.BackendQueue {
		return notifier.NewQueueScheduler(RedisOpt(cfg))
	}
	return notifier.NewLocalScheduler(store)
}

// Senders builds the enabled delivery channels. Channels that cannot be
// configured are skipped with a warning.
func (c *Context) Senders() []notifier.Sender {
	var senders []notifier.Sender
	for _, ch := range c.Config.Notifier.Channels {
		switch ch {
		case constants.ChannelTray:
			senders = append(senders, notifier.NewTraySender())
		case constants.ChannelPush:
			push, err := notifier.NewPushSender(c.Context(), c.Config.Firebase.CredentialsFile, c.Config.Firebase.DeviceToken)
			if err != nil {
				logger.Warn("Push channel disabled", "error", err)
				continue
			}
			senders = append(senders, push)
		case constants.ChannelSMS:
			token := c.Config.Twilio.AuthToken
			if token == "" {
				if t, err := keyring.GetTwilioAuthToken(); err == nil {
					token = t
				}
			}
			sms, err := notifier.NewSMSSender(c.Config.Twilio.AccountSID, token, c.Config.Twilio.From, c.Config.Twilio.To)
			if err != nil {
				logger.Warn("SMS channel disabled", "error", err)
				continue
			}
			senders = append(senders, sms)
		}
	}
	return senders
}

// Dispatcher returns a dispatcher over the enabled channels using the
// grace period from settings.
func (c *Context) Dispatcher() (*notifier.Dispatcher, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	grace := time.Duration(settings.NotificationGracePeriodMin) * time.Minute
	return notifier.NewDispatcher(c.Store, grace, c.Senders()...), nil
}

// Location returns the timezone configured in settings.
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return utils.LoadLocation(settings.Timezone)
}

// LoadReminders refreshes reminders from the server, or from the local
// cache when offline is set or the server cannot be reached.
func (c *Context) LoadReminders(offline bool) error {
	if !offline {
		err := c.Reminders.Load(c.Context())
		if err == nil {
			return nil
		}
		logger.Warn("Using cached reminders", "error", err)
		fmt.Printf("⚠ Server unreachable, showing cached reminders (%v)\n", err)
	}
	return c.Reminders.LoadCached()
}

// PerformAutomaticBackup creates a backup of a local database, logging failures.
func (c *Context) PerformAutomaticBackup() {
	if c.Store.GetConfigPath() == "postgresql" {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
