package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/iho/creditbook/internal/domain"
)

const (
	// QueueNotifications carries client SMS notices.
	QueueNotifications = "notifications"
	// TaskNotifySMS sends one transaction notice to a client.
	TaskNotifySMS = "ledger:notify_sms"
)

// NewNotifySMSTask constructs an Asynq task for notice.
func NewNotifySMSTask(notice domain.TransactionNotice) (*asynq.Task, error) {
	data, err := json.Marshal(notice)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifySMS, data), nil
}

// RenderMessage produces the SMS text for notice.
func RenderMessage(notice domain.TransactionNotice, shopName string) (string, error) {
	switch notice.Kind {
	case domain.NoticeCredit:
		return fmt.Sprintf("Dear %s, ₹%s credited to your account. Please return soon. - %s",
			notice.ClientName, notice.Amount, shopName), nil
	case domain.NoticeRepayment:
		return fmt.Sprintf("Thank you %s for paying ₹%s. - %s",
			notice.ClientName, notice.Amount, shopName), nil
	default:
		return "", fmt.Errorf("unknown notice kind %q", notice.Kind)
	}
}
