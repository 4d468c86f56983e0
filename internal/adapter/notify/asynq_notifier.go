package notify

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/jobs"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Observer receives enqueue outcomes.
type Observer interface {
	ObserveNotification(kind string, err error)
}

// AsynqNotifier implements usecase.Notifier by queueing an SMS task per
// notice. Delivery happens in the worker process.
type AsynqNotifier struct {
	client   Enqueuer
	maxRetry int
	observer Observer
}

// NewAsynqNotifier creates a notifier. observer may be nil.
func NewAsynqNotifier(client Enqueuer, maxRetry int, observer Observer) *AsynqNotifier {
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return &AsynqNotifier{client: client, maxRetry: maxRetry, observer: observer}
}

// Notify enqueues notice. The event id doubles as the task id so a retried
// HTTP request cannot text the client twice.
func (n *AsynqNotifier) Notify(ctx context.Context, notice domain.TransactionNotice) error {
	task, err := jobs.NewNotifySMSTask(notice)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.Queue(jobs.QueueNotifications),
		asynq.MaxRetry(n.maxRetry),
	}
	if notice.EventID != "" {
		opts = append(opts, asynq.TaskID("notice:"+notice.EventID))
	}

	_, err = n.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		err = fmt.Errorf("enqueue %s notice for %s: %w", notice.Kind, notice.ClientID, err)
	}
	if n.observer != nil {
		n.observer.ObserveNotification(notice.Kind, err)
	}
	return err
}
