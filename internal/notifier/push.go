package notifier

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
)

type fcmClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// PushSender delivers notifications to one device through Firebase Cloud Messaging.
type PushSender struct {
	client fcmClient
	token  string
}

// NewPushSender initialises the Firebase app from a service account file.
func NewPushSender(ctx context.Context, credentialsFile, deviceToken string) (*PushSender, error) {
	if credentialsFile == "" {
		return nil, errors.New("firebase.credentials_file is not configured")
	}
	if deviceToken == "" {
		return nil, errors.New("firebase.device_token is not configured")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting messaging client: %w", err)
	}
	return &PushSender{client: client, token: deviceToken}, nil
}

func (p *PushSender) Channel() string { return constants.ChannelPush }

func (p *PushSender) Send(ctx context.Context, msg Message) error {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	if msg.ID != "" {
		data["notificationId"] = msg.ID
	}

	fcmMsg := &messaging.Message{
		Token: p.token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "reminders",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	id, err := p.client.Send(ctx, fcmMsg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	logger.Debug("Push notification sent", "fcm_id", id)
	return nil
}
