package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSSender texts notifications to the patient's phone through Twilio.
type SMSSender struct {
	api  messageCreator
	from string
	to   string
}

func NewSMSSender(accountSID, authToken, from, to string) (*SMSSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio credentials are not configured")
	}
	if from == "" || to == "" {
		return nil, errors.New("twilio.from and twilio.to must be set")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{api: client.Api, from: from, to: to}, nil
}

func (s *SMSSender) Channel() string { return constants.ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := msg.Title
	if msg.Body != "" {
		body = msg.Title + "\n" + msg.Body
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		logger.Debug("SMS sent", "sid", *resp.Sid)
	}
	return nil
}
