package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

func TestNewWorkerRequiresRedis(t *testing.T) {
	if _, err := NewWorker(WorkerConfig{Logger: zerolog.Nop()}); err == nil {
		t.Fatal("expected error without redis options")
	}
}

func TestNewWorkerRegistersHandlers(t *testing.T) {
	job := NewNotifyJob(&stubSender{}, "Shop", zerolog.Nop(), nil)
	called := false

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "localhost:6379"},
		Logger:    zerolog.Nop(),
		Notify:    job,
		Handlers: []TaskHandler{
			{Type: "ledger:custom", Handler: func(context.Context, *asynq.Task) error {
				called = true
				return nil
			}},
			{Type: "", Handler: nil},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.mux.ProcessTask(context.Background(), asynq.NewTask("ledger:custom", nil)); err != nil {
		t.Fatalf("custom handler failed: %v", err)
	}
	if !called {
		t.Fatal("expected custom handler to run")
	}

	if err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskNotifySMS, []byte("{"))); err == nil {
		t.Fatal("expected notify handler to reject malformed payload")
	}
}

func TestWorkerRunNil(t *testing.T) {
	var w *Worker
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for nil worker")
	}
}
