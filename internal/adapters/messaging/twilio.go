package messaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// Ensure TwilioSender implements Sender
var _ Sender = (*TwilioSender)(nil)

// TwilioSender delivers WhatsApp messages through the Twilio REST API
type TwilioSender struct {
	accountSID  string
	authToken   string
	fromNumber  string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	log         *logger.Logger
}

// NewTwilioSender creates a Twilio WhatsApp sender
func NewTwilioSender(cfg config.MessagingConfig) (*TwilioSender, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "twilio credentials are required")
	}

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.RateLimitRate
	if limit == 0 {
		limit = 20
	}
	burst := cfg.RateLimitBurst
	if burst == 0 {
		burst = 30
	}

	return &TwilioSender{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		fromNumber: cfg.TwilioWhatsAppNumber,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: rate.NewLimiter(rate.Limit(limit), burst),
		log:         logger.Get().With("component", "twilio_sender"),
	}, nil
}

// Send delivers a WhatsApp message to the user's phone number
func (s *TwilioSender) Send(ctx context.Context, userID, text string) error {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "twilio rate limiter")
	}

	form := url.Values{}
	form.Set("From", s.fromNumber)
	form.Set("To", "whatsapp:"+userID)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "create twilio request")
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send twilio request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return errors.Wrapf(errors.ErrUnavailable, "twilio API error (%d): %s",
			resp.StatusCode, string(body))
	}

	s.log.Infow("Message delivered", "user_id", userID, "chars", len(text))
	return nil
}
