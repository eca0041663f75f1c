// Package sms is the outbound notification sink for reset codes and
// staff invitations: fire-and-forget, (destination, message) in,
// success or failure out.
package sms

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender dispatches one SMS message.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// TwilioSender sends through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a TwilioSender from account credentials.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

// Send dispatches the message to a single destination.
func (s *TwilioSender) Send(_ context.Context, to, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used
// in development and as the fallback when Twilio is not configured.
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message.
func (s *LogSender) Send(_ context.Context, to, message string) error {
	s.log.WithFields(logrus.Fields{"to": to}).Infof("[SMS] %s", message)
	return nil
}
