package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SMSSender delivers one text message.
type SMSSender interface {
	Send(ctx context.Context, number, message string) error
}

// GatewaySender posts messages to a bulk SMS gateway as a form.
type GatewaySender struct {
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

// NewGatewaySender constructs a sender for gatewayURL.
func NewGatewaySender(gatewayURL, apiKey string) *GatewaySender {
	return &GatewaySender{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Send posts the message. Any 4xx or 5xx response is an error.
func (s *GatewaySender) Send(ctx context.Context, number, message string) error {
	form := url.Values{
		"authorization": {s.apiKey},
		"message":       {message},
		"language":      {"english"},
		"route":         {"q"},
		"numbers":       {number},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// LogSender only logs messages. Used when no gateway is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, number, message string) error {
	s.logger.Info().Str("number", number).Str("message", message).Msg("sms gateway not configured; message logged")
	return nil
}
