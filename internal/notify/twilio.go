package notify

import (
	"context"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rickgao/listing-watch/internal/config"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type callCreator interface {
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

func newTwilioAPI(cfg config.TwilioConfig, timeout time.Duration) *twilioApi.ApiService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client.Api
}

// SMS sends text messages through Twilio.
type SMS struct {
	api  messageCreator
	from string
}

// NewSMS builds the SMS channel once at startup.
func NewSMS(cfg config.TwilioConfig, timeout time.Duration) *SMS {
	return &SMS{api: newTwilioAPI(cfg, timeout), from: cfg.From}
}

func (s *SMS) Name() string { return "sms" }

func (s *SMS) Send(ctx context.Context, recipient string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	_, err := s.api.CreateMessage(params)
	return err
}

// Voice places calls through Twilio; the call plays the TwiML at url.
type Voice struct {
	api  callCreator
	from string
	url  string
}

// NewVoice builds the voice channel once at startup.
func NewVoice(cfg config.TwilioConfig, timeout time.Duration) *Voice {
	return &Voice{api: newTwilioAPI(cfg, timeout), from: cfg.From, url: cfg.URL}
}

func (v *Voice) Name() string { return "voice" }

func (v *Voice) Send(ctx context.Context, recipient string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateCallParams{}
	params.SetTo(recipient)
	params.SetFrom(v.from)
	params.SetUrl(v.url)

	_, err := v.api.CreateCall(params)
	return err
}
