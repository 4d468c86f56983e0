package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/iho/creditbook/internal/domain"
)

// NotificationObserver receives delivery outcomes.
type NotificationObserver interface {
	ObserveNotification(kind string, err error)
}

// NotifyJob renders transaction notices and hands them to an SMSSender.
type NotifyJob struct {
	sender   SMSSender
	shopName string
	logger   zerolog.Logger
	observer NotificationObserver
}

// NewNotifyJob initialises the notification handler. observer may be nil.
func NewNotifyJob(sender SMSSender, shopName string, logger zerolog.Logger, observer NotificationObserver) *NotifyJob {
	return &NotifyJob{
		sender:   sender,
		shopName: shopName,
		logger:   logger.With().Str("task", TaskNotifySMS).Logger(),
		observer: observer,
	}
}

// Handle processes TaskNotifySMS tasks. Malformed payloads are not retried;
// gateway failures are, by asynq's retry policy.
func (j *NotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("notify: handler not configured")
	}

	var notice domain.TransactionNotice
	if err := json.Unmarshal(t.Payload(), &notice); err != nil {
		j.logger.Error().Err(err).Msg("malformed notice payload")
		return fmt.Errorf("decode notice: %w", asynq.SkipRetry)
	}

	message, err := RenderMessage(notice, j.shopName)
	if err != nil {
		j.logger.Error().Err(err).Str("event_id", notice.EventID).Msg("cannot render notice")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if notice.Contact == "" {
		j.logger.Warn().Str("client_id", notice.ClientID).Msg("client has no contact number; notice dropped")
		return nil
	}

	err = j.sender.Send(ctx, notice.Contact, message)
	if j.observer != nil {
		j.observer.ObserveNotification(notice.Kind, err)
	}
	if err != nil {
		j.logger.Error().Err(err).Str("client_id", notice.ClientID).Str("event_id", notice.EventID).Msg("sms delivery failed")
		return err
	}

	j.logger.Info().Str("client_id", notice.ClientID).Str("event_id", notice.EventID).Str("kind", notice.Kind).Msg("sms sent")
	return nil
}
