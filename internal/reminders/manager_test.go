package reminders

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/models"
	"github.com/DarkZangetsu/medcare/internal/notifier"
	"github.com/DarkZangetsu/medcare/internal/storage/sqlite"
)

type fakeScheduler struct {
	next      int
	scheduled map[string]notifier.Notification
	cancelled []string
	failAfter int // fail ScheduleAt once this many have succeeded, when > 0
	cancelErr error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: map[string]notifier.Notification{}}
}

func (f *fakeScheduler) ScheduleAt(ctx context.Context, n notifier.Notification) (string, error) {
	if f.failAfter > 0 && len(f.scheduled) >= f.failAfter {
		return "", errors.New("device refused")
	}
	f.next++
	id := fmt.Sprintf("notif-%d", f.next)
	f.scheduled[id] = n
	return id, nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	delete(f.scheduled, id)
	return nil
}

func (f *fakeScheduler) CancelAll(ctx context.Context) error {
	f.scheduled = map[string]notifier.Notification{}
	return nil
}

type fakeRemote struct {
	next      int
	reminders map[string]models.Reminder
	err       error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{reminders: map[string]models.Reminder{}}
}

func (f *fakeRemote) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	if f.err != nil {
		return nil, f.err
	}
	var list []models.Reminder
	for _, r := range f.reminders {
		list = append(list, r)
	}
	return list, nil
}

func (f *fakeRemote) CreateReminder(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	if f.err != nil {
		return models.Reminder{}, f.err
	}
	f.next++
	r.ID = fmt.Sprintf("%d", f.next)
	r.NotificationIDs = nil
	f.reminders[r.ID] = r
	return r, nil
}

func (f *fakeRemote) UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (models.Reminder, error) {
	if f.err != nil {
		return models.Reminder{}, f.err
	}
	r, ok := f.reminders[id]
	if !ok {
		return models.Reminder{}, apperrors.Remote("update reminder", errors.New("Reminder not found"))
	}
	r = patch.Apply(r)
	f.reminders[id] = r
	return r, nil
}

func (f *fakeRemote) DeleteReminder(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.reminders, id)
	return nil
}

var testNow = time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)

func setupManager(t *testing.T) (*Manager, *fakeRemote, *fakeScheduler, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "reminders.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	remote := newFakeRemote()
	sched := newFakeScheduler()
	m := NewManager(remote, sched, store)
	m.now = func() time.Time { return testNow }
	return m, remote, sched, store
}

func metformin() models.Reminder {
	return models.Reminder{
		Type:      models.ReminderMedication,
		Title:     "Metformin",
		Date:      "2025-06-01",
		Time:      "08:00",
		Frequency: models.FrequencyDaily,
		EndDate:   "2025-06-03",
	}
}

func TestScheduleReminderExpandsSeries(t *testing.T) {
	m, _, sched, _ := setupManager(t)

	id, err := m.ScheduleReminder(context.Background(), metformin())
	if err != nil {
		t.Fatalf("ScheduleReminder() error = %v", err)
	}
	if id != "notif-1" {
		t.Errorf("expected first identifier notif-1, got %q", id)
	}
	if len(sched.scheduled) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(sched.scheduled))
	}
	for i, day := range []int{1, 2, 3} {
		n := sched.scheduled[fmt.Sprintf("notif-%d", i+1)]
		want := time.Date(2025, 6, day, 8, 0, 0, 0, time.UTC)
		if !n.TriggerAt.Equal(want) {
			t.Errorf("trigger %d = %v, want %v", i, n.TriggerAt, want)
		}
		if n.Title != "Rappel: Metformin" {
			t.Errorf("title = %q", n.Title)
		}
		if n.Body != "N'oubliez pas votre médicament" {
			t.Errorf("body = %q", n.Body)
		}
	}
}

func TestScheduleReminderSingleInstant(t *testing.T) {
	tests := []struct {
		name      string
		frequency models.Frequency
		endDate   string
	}{
		{"once", models.FrequencyOnce, "2025-06-10"},
		{"empty frequency", "", ""},
		{"daily without end", models.FrequencyDaily, ""},
		{"monthly without end", models.FrequencyMonthly, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, sched, _ := setupManager(t)
			r := metformin()
			r.Frequency = tt.frequency
			r.EndDate = tt.endDate
			if _, err := m.ScheduleReminder(context.Background(), r); err != nil {
				t.Fatalf("ScheduleReminder() error = %v", err)
			}
			if len(sched.scheduled) != 1 {
				t.Errorf("expected 1 notification, got %d", len(sched.scheduled))
			}
		})
	}
}

func TestScheduleReminderRejectsPastTrigger(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
	}{
		{"exactly now", "2025-05-30", "12:00"},
		{"one minute ago", "2025-05-30", "11:59"},
		{"yesterday", "2025-05-29", "18:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, sched, _ := setupManager(t)
			r := metformin()
			r.Date, r.Time = tt.date, tt.time
			_, err := m.ScheduleReminder(context.Background(), r)
			if !errors.Is(err, apperrors.ErrInvalidSchedule) {
				t.Fatalf("expected ErrInvalidSchedule, got %v", err)
			}
			var ise *apperrors.InvalidScheduleError
			if !errors.As(err, &ise) || !ise.Now.Equal(testNow) {
				t.Errorf("unexpected error detail: %v", err)
			}
			if len(sched.scheduled) != 0 {
				t.Errorf("nothing should be scheduled, got %d", len(sched.scheduled))
			}
		})
	}
}

func TestScheduleReminderEndBeforeStart(t *testing.T) {
	m, _, sched, _ := setupManager(t)

	r := metformin()
	r.EndDate = "2025-05-31"
	id, err := m.ScheduleReminder(context.Background(), r)
	if !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	if id != "" || len(sched.scheduled) != 0 {
		t.Errorf("nothing should be scheduled, got id %q and %d notifications", id, len(sched.scheduled))
	}
}

func TestScheduleReminderPermissionDenied(t *testing.T) {
	m, _, sched, store := setupManager(t)
	settings, _ := store.GetSettings()
	settings.NotificationsEnabled = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	_, err := m.ScheduleReminder(context.Background(), metformin())
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("nothing should be scheduled")
	}
}

func TestScheduleReminderRollsBackPartialSeries(t *testing.T) {
	m, _, sched, _ := setupManager(t)
	sched.failAfter = 2

	if _, err := m.ScheduleReminder(context.Background(), metformin()); err == nil {
		t.Fatal("expected error")
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("partial series should be cancelled, %d left", len(sched.scheduled))
	}
	if len(sched.cancelled) != 2 {
		t.Errorf("expected 2 cancellations, got %d", len(sched.cancelled))
	}
}

func TestCreateReminder(t *testing.T) {
	m, remote, sched, store := setupManager(t)

	created, err := m.CreateReminder(context.Background(), metformin())
	if err != nil {
		t.Fatalf("CreateReminder() error = %v", err)
	}
	if created.ID == "" || created.ID == models.TempReminderID {
		t.Errorf("expected server id, got %q", created.ID)
	}
	if !created.IsActive {
		t.Error("created reminder should be active")
	}
	if created.NotificationID != "notif-1" {
		t.Errorf("NotificationID = %q", created.NotificationID)
	}
	if len(created.NotificationIDs) != 3 {
		t.Errorf("expected 3 local identifiers, got %v", created.NotificationIDs)
	}
	if remote.reminders[created.ID].NotificationID != "notif-1" {
		t.Error("remote should keep the first identifier")
	}
	if sched.scheduled["notif-1"].Data[notifier.DataReminderID] != models.TempReminderID {
		t.Errorf("payload = %v", sched.scheduled["notif-1"].Data)
	}

	if got := m.Reminders(); len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("in-memory set = %+v", got)
	}
	cached, err := store.GetReminder(created.ID)
	if err != nil {
		t.Fatalf("reminder not cached: %v", err)
	}
	if len(cached.NotificationIDs) != 3 {
		t.Errorf("cached identifiers = %v", cached.NotificationIDs)
	}
}

func TestCreateReminderValidation(t *testing.T) {
	m, _, sched, _ := setupManager(t)
	r := metformin()
	r.Title = "  "
	_, err := m.CreateReminder(context.Background(), r)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Error("nothing should be scheduled")
	}
}

func TestCreateReminderRemoteFailure(t *testing.T) {
	m, remote, sched, store := setupManager(t)
	remote.err = apperrors.Remote("create reminder", errors.New("network unreachable"))

	_, err := m.CreateReminder(context.Background(), metformin())
	if !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("notifications should be cancelled, %d left", len(sched.scheduled))
	}
	if len(m.Reminders()) != 0 {
		t.Error("in-memory set should be unchanged")
	}
	cached, _ := store.GetAllReminders()
	if len(cached) != 0 {
		t.Error("cache should be unchanged")
	}
}

func TestToggleReminderOffThenOn(t *testing.T) {
	m, remote, sched, _ := setupManager(t)
	ctx := context.Background()

	created, err := m.CreateReminder(ctx, metformin())
	if err != nil {
		t.Fatal(err)
	}

	off, err := m.ToggleReminder(ctx, created)
	if err != nil {
		t.Fatalf("ToggleReminder(off) error = %v", err)
	}
	if off.IsActive || off.NotificationID != "" || len(off.NotificationIDs) != 0 {
		t.Errorf("unexpected inactive reminder: %+v", off)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("all notifications should be cancelled, %d left", len(sched.scheduled))
	}
	if remote.reminders[created.ID].IsActive {
		t.Error("remote should be inactive")
	}

	on, err := m.ToggleReminder(ctx, off)
	if err != nil {
		t.Fatalf("ToggleReminder(on) error = %v", err)
	}
	if !on.IsActive {
		t.Error("reminder should be active again")
	}
	if on.NotificationID == "" || on.NotificationID == created.NotificationID {
		t.Errorf("expected a fresh identifier, got %q", on.NotificationID)
	}
	if len(sched.scheduled) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(sched.scheduled))
	}
	if remote.reminders[created.ID].NotificationID != on.NotificationID {
		t.Error("remote should store the new identifier")
	}
}

func TestToggleReminderSchedulingFailureKeepsState(t *testing.T) {
	m, remote, _, _ := setupManager(t)
	ctx := context.Background()

	created, err := m.CreateReminder(ctx, metformin())
	if err != nil {
		t.Fatal(err)
	}
	off, err := m.ToggleReminder(ctx, created)
	if err != nil {
		t.Fatal(err)
	}

	// the first occurrence is now in the past
	m.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }
	if _, err := m.ToggleReminder(ctx, off); !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	got, _ := m.Get(created.ID)
	if got.IsActive {
		t.Error("reminder should stay inactive")
	}
	if remote.reminders[created.ID].IsActive {
		t.Error("remote should stay inactive")
	}
}

func TestToggleReminderRemoteFailureCancelsNewSeries(t *testing.T) {
	m, remote, sched, _ := setupManager(t)
	ctx := context.Background()

	created, _ := m.CreateReminder(ctx, metformin())
	off, _ := m.ToggleReminder(ctx, created)

	remote.err = apperrors.Remote("update reminder", errors.New("500"))
	if _, err := m.ToggleReminder(ctx, off); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("new series should be cancelled, %d left", len(sched.scheduled))
	}
	got, _ := m.Get(created.ID)
	if got.IsActive {
		t.Error("reminder should stay inactive")
	}
}

func TestToggleReminderOffRemoteFailureRestoresSeries(t *testing.T) {
	m, remote, sched, store := setupManager(t)
	ctx := context.Background()

	created, err := m.CreateReminder(ctx, metformin())
	if err != nil {
		t.Fatal(err)
	}

	remote.err = apperrors.Remote("update reminder", errors.New("500"))
	if _, err := m.ToggleReminder(ctx, created); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}

	got, _ := m.Get(created.ID)
	if !got.IsActive {
		t.Fatal("reminder should stay active")
	}
	assertLive(t, sched, got, 3)

	cached, err := store.GetReminder(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached.NotificationIDs) != 3 || cached.NotificationIDs[0] != got.NotificationID {
		t.Errorf("cache should hold the restored series, got %v", cached.NotificationIDs)
	}
}

func TestToggleReminderOnEndBeforeStart(t *testing.T) {
	m, remote, sched, _ := setupManager(t)
	ctx := context.Background()

	r := metformin()
	r.ID = "42"
	r.EndDate = "2025-05-31"
	remote.reminders[r.ID] = r
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := m.ToggleReminder(ctx, r); !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("nothing should be scheduled, got %d", len(sched.scheduled))
	}
	got, _ := m.Get(r.ID)
	if got.IsActive || remote.reminders[r.ID].IsActive {
		t.Error("reminder should stay inactive")
	}
}

// assertLive checks that r references exactly want notifications, all still scheduled.
func assertLive(t *testing.T, sched *fakeScheduler, r models.Reminder, want int) {
	t.Helper()
	if len(sched.scheduled) != want {
		t.Errorf("live notifications = %d, want %d", len(sched.scheduled), want)
	}
	if len(r.NotificationIDs) != want {
		t.Fatalf("NotificationIDs = %v, want %d ids", r.NotificationIDs, want)
	}
	for _, id := range r.NotificationIDs {
		if _, ok := sched.scheduled[id]; !ok {
			t.Errorf("notification %s is not scheduled", id)
		}
	}
	if r.NotificationID != r.NotificationIDs[0] {
		t.Errorf("NotificationID = %q, want %q", r.NotificationID, r.NotificationIDs[0])
	}
}

func TestToggleReminderNotFound(t *testing.T) {
	m, _, _, _ := setupManager(t)
	_, err := m.ToggleReminder(context.Background(), models.Reminder{ID: "missing"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReminderDespiteCancelFailure(t *testing.T) {
	m, remote, sched, store := setupManager(t)
	ctx := context.Background()

	created, err := m.CreateReminder(ctx, metformin())
	if err != nil {
		t.Fatal(err)
	}
	sched.cancelErr = errors.New("device error")

	if err := m.DeleteReminder(ctx, created); err != nil {
		t.Fatalf("DeleteReminder() error = %v", err)
	}
	if len(m.Reminders()) != 0 {
		t.Error("reminder should be removed from the set")
	}
	if _, ok := remote.reminders[created.ID]; ok {
		t.Error("reminder should be removed remotely")
	}
	if _, err := store.GetReminder(created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("reminder should be removed from the cache, got %v", err)
	}
}

func TestDeleteReminderRemoteFailure(t *testing.T) {
	m, remote, sched, _ := setupManager(t)
	ctx := context.Background()

	created, _ := m.CreateReminder(ctx, metformin())
	remote.err = apperrors.Remote("delete reminder", errors.New("timeout"))

	if err := m.DeleteReminder(ctx, created); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if len(m.Reminders()) != 1 {
		t.Fatal("reminder should stay in the set")
	}
	got, _ := m.Get(created.ID)
	if !got.IsActive {
		t.Error("reminder should stay active")
	}
	assertLive(t, sched, got, 3)
}

func TestDeleteReminderNotFound(t *testing.T) {
	m, _, _, _ := setupManager(t)
	if err := m.DeleteReminder(context.Background(), models.Reminder{ID: "nope"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReminderReschedules(t *testing.T) {
	m, _, sched, _ := setupManager(t)
	ctx := context.Background()

	created, _ := m.CreateReminder(ctx, metformin())
	newTime := "09:30"
	updated, err := m.UpdateReminder(ctx, created.ID, models.ReminderPatch{Time: &newTime})
	if err != nil {
		t.Fatalf("UpdateReminder() error = %v", err)
	}
	if updated.Time != "09:30" {
		t.Errorf("Time = %q", updated.Time)
	}
	if updated.NotificationID == created.NotificationID {
		t.Error("expected a new identifier")
	}
	if len(sched.scheduled) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(sched.scheduled))
	}
	for _, id := range created.NotificationIDs {
		if _, ok := sched.scheduled[id]; ok {
			t.Errorf("old notification %s still scheduled", id)
		}
	}
	for _, n := range sched.scheduled {
		if n.TriggerAt.Hour() != 9 || n.TriggerAt.Minute() != 30 {
			t.Errorf("trigger = %v", n.TriggerAt)
		}
	}
}

func TestUpdateReminderRemoteFailure(t *testing.T) {
	m, remote, sched, _ := setupManager(t)
	ctx := context.Background()

	created, _ := m.CreateReminder(ctx, metformin())
	remote.err = apperrors.Remote("update reminder", errors.New("bad gateway"))

	title := "Metformin 500mg"
	if _, err := m.UpdateReminder(ctx, created.ID, models.ReminderPatch{Title: &title}); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	got, _ := m.Get(created.ID)
	if got.Title != "Metformin" || got.NotificationID != created.NotificationID {
		t.Errorf("reminder changed: %+v", got)
	}
	if len(sched.scheduled) != 3 {
		t.Errorf("original series should remain, got %d", len(sched.scheduled))
	}
	for _, id := range created.NotificationIDs {
		if _, ok := sched.scheduled[id]; !ok {
			t.Errorf("original notification %s was cancelled", id)
		}
	}
}

func TestUpdateReminderInvalidPatch(t *testing.T) {
	m, _, _, _ := setupManager(t)
	created, _ := m.CreateReminder(context.Background(), metformin())
	bad := "tomorrow"
	if _, err := m.UpdateReminder(context.Background(), created.ID, models.ReminderPatch{Date: &bad}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLoadMergesLocalIdentifiers(t *testing.T) {
	m, remote, _, _ := setupManager(t)
	ctx := context.Background()

	created, _ := m.CreateReminder(ctx, metformin())
	remote.reminders["99"] = models.Reminder{
		ID: "99", Type: models.ReminderAnalysis, Title: "Blood test",
		Date: "2025-07-01", Time: "07:00", Frequency: models.FrequencyOnce, IsActive: true,
	}

	fresh := NewManager(remote, newFakeScheduler(), m.store)
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(fresh.Reminders()) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(fresh.Reminders()))
	}
	got, err := fresh.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.NotificationIDs) != 3 {
		t.Errorf("local identifiers should survive a reload, got %v", got.NotificationIDs)
	}

	offline := NewManager(remote, newFakeScheduler(), m.store)
	if err := offline.LoadCached(); err != nil {
		t.Fatalf("LoadCached() error = %v", err)
	}
	if len(offline.Reminders()) != 2 {
		t.Errorf("cache should hold 2 reminders, got %d", len(offline.Reminders()))
	}
}

func TestLoadRemoteFailureKeepsSet(t *testing.T) {
	m, remote, _, _ := setupManager(t)
	ctx := context.Background()
	if _, err := m.CreateReminder(ctx, metformin()); err != nil {
		t.Fatal(err)
	}
	remote.err = apperrors.Remote("list reminders", errors.New("offline"))
	if err := m.Load(ctx); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if len(m.Reminders()) != 1 {
		t.Error("set should be unchanged")
	}
}

func TestManagerUpcoming(t *testing.T) {
	m, _, _, _ := setupManager(t)
	ctx := context.Background()
	for _, date := range []string{"2025-06-05", "2025-06-01", "2025-06-03"} {
		r := metformin()
		r.Date = date
		r.EndDate = ""
		if _, err := m.CreateReminder(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	got, err := m.Upcoming()
	if err != nil {
		t.Fatalf("Upcoming() error = %v", err)
	}
	if len(got) != 3 || got[0].Date != "2025-06-01" || got[2].Date != "2025-06-05" {
		t.Errorf("unexpected order: %+v", got)
	}
}
