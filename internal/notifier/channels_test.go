package notifier

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/DarkZangetsu/medcare/internal/constants"
)

type fakeFCM struct {
	got *messaging.Message
	err error
}

func (f *fakeFCM) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	f.got = msg
	if f.err != nil {
		return "", f.err
	}
	return "projects/medcare/messages/1", nil
}

func TestPushSenderSend(t *testing.T) {
	fcm := &fakeFCM{}
	p := &PushSender{client: fcm, token: "device-token"}
	if p.Channel() != constants.ChannelPush {
		t.Errorf("Channel() = %q", p.Channel())
	}

	msg := Message{ID: "n1", Title: "Rappel: Aspirin", Body: "Take 1 pill", Data: map[string]string{DataReminderID: "r1"}}
	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if fcm.got.Token != "device-token" {
		t.Errorf("token = %q", fcm.got.Token)
	}
	if fcm.got.Notification.Title != msg.Title || fcm.got.Notification.Body != msg.Body {
		t.Errorf("notification = %+v", fcm.got.Notification)
	}
	if fcm.got.Data[DataReminderID] != "r1" || fcm.got.Data["notificationId"] != "n1" {
		t.Errorf("data = %v", fcm.got.Data)
	}
	if fcm.got.Android.Priority != "high" {
		t.Errorf("android priority = %q", fcm.got.Android.Priority)
	}
	if _, ok := msg.Data["notificationId"]; ok {
		t.Error("Send must not mutate the caller's data map")
	}
}

func TestPushSenderError(t *testing.T) {
	p := &PushSender{client: &fakeFCM{err: errors.New("unregistered")}, token: "t"}
	if err := p.Send(context.Background(), Message{Title: "t"}); err == nil {
		t.Error("expected error")
	}
}

func TestNewPushSenderRequiresConfig(t *testing.T) {
	if _, err := NewPushSender(context.Background(), "", "token"); err == nil {
		t.Error("expected error without credentials file")
	}
	if _, err := NewPushSender(context.Background(), "creds.json", ""); err == nil {
		t.Error("expected error without device token")
	}
}

type fakeTwilio struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestSMSSenderSend(t *testing.T) {
	api := &fakeTwilio{}
	s := &SMSSender{api: api, from: "+15550001", to: "+261340000000"}
	if s.Channel() != constants.ChannelSMS {
		t.Errorf("Channel() = %q", s.Channel())
	}
	if err := s.Send(context.Background(), Message{Title: "Rappel: Aspirin", Body: "Take 1 pill"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if *api.params.To != "+261340000000" || *api.params.From != "+15550001" {
		t.Errorf("to=%q from=%q", *api.params.To, *api.params.From)
	}
	if *api.params.Body != "Rappel: Aspirin\nTake 1 pill" {
		t.Errorf("body = %q", *api.params.Body)
	}

	s.api = &fakeTwilio{err: errors.New("21211 invalid number")}
	if err := s.Send(context.Background(), Message{Title: "t"}); err == nil {
		t.Error("expected error")
	}
}

func TestNewSMSSenderValidation(t *testing.T) {
	if _, err := NewSMSSender("", "tok", "a", "b"); err == nil {
		t.Error("expected error without account sid")
	}
	if _, err := NewSMSSender("AC1", "tok", "", "b"); err == nil {
		t.Error("expected error without from")
	}
	s, err := NewSMSSender("AC1", "tok", "+1", "+2")
	if err != nil {
		t.Fatalf("NewSMSSender() error = %v", err)
	}
	if s.from != "+1" || s.to != "+2" {
		t.Errorf("unexpected sender: %+v", s)
	}
}
