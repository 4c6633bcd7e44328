package settings

import (
	"path/filepath"
	"testing"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx := &cli.Context{Store: store}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, cleanup
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &SettingsCmd{List: true}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	disabled := false
	tz := "Indian/Antananarivo"
	limit := 3
	grace := 10

	cmd := &SettingsCmd{
		NotificationsEnabled: &disabled,
		Timezone:             &tz,
		UpcomingLimit:        &limit,
		GracePeriodMin:       &grace,
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if settings.NotificationsEnabled {
		t.Error("expected notifications to be disabled")
	}
	if settings.Timezone != tz {
		t.Errorf("Timezone = %q, want %q", settings.Timezone, tz)
	}
	if settings.UpcomingLimit != limit {
		t.Errorf("UpcomingLimit = %d, want %d", settings.UpcomingLimit, limit)
	}
	if settings.NotificationGracePeriodMin != grace {
		t.Errorf("NotificationGracePeriodMin = %d, want %d", settings.NotificationGracePeriodMin, grace)
	}
}

func TestSettingsCmd_Invalid(t *testing.T) {
	badTZ := "Mars/Olympus"
	badLimit := 9
	negative := -1

	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"timezone", SettingsCmd{Timezone: &badTZ}},
		{"limit", SettingsCmd{UpcomingLimit: &badLimit}},
		{"grace", SettingsCmd{GracePeriodMin: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cleanup := setupTestDB(t)
			defer cleanup()

			before, err := ctx.Store.GetSettings()
			if err != nil {
				t.Fatalf("failed to get settings: %v", err)
			}
			if err := tt.cmd.Run(ctx); err == nil {
				t.Fatal("expected error for invalid value")
			}
			after, err := ctx.Store.GetSettings()
			if err != nil {
				t.Fatalf("failed to get settings: %v", err)
			}
			if before != after {
				t.Errorf("settings changed after invalid update: %+v -> %+v", before, after)
			}
		})
	}
}
