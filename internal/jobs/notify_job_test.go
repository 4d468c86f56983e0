package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditbook/internal/domain"
)

type sentMessage struct {
	number  string
	message string
}

type stubSender struct {
	sent []sentMessage
	err  error
}

func (s *stubSender) Send(_ context.Context, number, message string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{number: number, message: message})
	return nil
}

type stubObserver struct {
	outcomes map[string]int
}

func (o *stubObserver) ObserveNotification(kind string, err error) {
	if o.outcomes == nil {
		o.outcomes = make(map[string]int)
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.outcomes[kind+"/"+status]++
}

func noticeTask(t *testing.T, notice domain.TransactionNotice) *asynq.Task {
	t.Helper()
	task, err := NewNotifySMSTask(notice)
	require.NoError(t, err)
	return task
}

func TestNotifyJob_SendsRenderedMessage(t *testing.T) {
	sender := &stubSender{}
	observer := &stubObserver{}
	job := NewNotifyJob(sender, "Cluck Shop", zerolog.Nop(), observer)

	err := job.Handle(context.Background(), noticeTask(t, domain.TransactionNotice{
		Kind:       domain.NoticeRepayment,
		ClientID:   "c1",
		ClientName: "Ravi",
		Contact:    "9876543210",
		Amount:     "500.00",
	}))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "9876543210", sender.sent[0].number)
	assert.Equal(t, "Thank you Ravi for paying ₹500.00. - Cluck Shop", sender.sent[0].message)
	assert.Equal(t, 1, observer.outcomes["repayment/ok"])
}

func TestNotifyJob_MalformedPayloadSkipsRetry(t *testing.T) {
	job := NewNotifyJob(&stubSender{}, "Shop", zerolog.Nop(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskNotifySMS, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNotifyJob_UnknownKindSkipsRetry(t *testing.T) {
	sender := &stubSender{}
	job := NewNotifyJob(sender, "Shop", zerolog.Nop(), nil)

	err := job.Handle(context.Background(), noticeTask(t, domain.TransactionNotice{Kind: "refund", Contact: "1"}))
	require.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, sender.sent)
}

func TestNotifyJob_NoContactIsDropped(t *testing.T) {
	sender := &stubSender{}
	job := NewNotifyJob(sender, "Shop", zerolog.Nop(), nil)

	err := job.Handle(context.Background(), noticeTask(t, domain.TransactionNotice{Kind: domain.NoticeCredit}))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestNotifyJob_GatewayFailureIsRetried(t *testing.T) {
	gatewayErr := errors.New("gateway timeout")
	observer := &stubObserver{}
	job := NewNotifyJob(&stubSender{err: gatewayErr}, "Shop", zerolog.Nop(), observer)

	err := job.Handle(context.Background(), noticeTask(t, domain.TransactionNotice{Kind: domain.NoticeCredit, Contact: "1"}))
	require.ErrorIs(t, err, gatewayErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, 1, observer.outcomes["credit/error"])
}

func TestNotifyJob_NilHandler(t *testing.T) {
	var job *NotifyJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskNotifySMS, nil)))
}
