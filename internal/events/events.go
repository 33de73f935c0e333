package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/pkg/helpers"
)

// Actions carried by RecordsChanged.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RecordsChanged announces that rows belonging to a user changed. It is
// the single change-feed message type: consumers re-derive the plan and
// due-date buckets from a fresh snapshot instead of patching state.
type RecordsChanged struct {
	UserID     string    `json:"user_id"`
	Table      string    `json:"table"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits RecordsChanged events onto the durable queue. A nil
// Publisher is safe to call and drops events, so handlers don't have to
// branch when messaging is disabled locally.
type Publisher struct {
	pub    *helpers.RabbitPublisher
	logger *logrus.Logger
}

func NewPublisher(pub *helpers.RabbitPublisher, logger *logrus.Logger) *Publisher {
	return &Publisher{pub: pub, logger: logger}
}

// RecordsChanged publishes the event. Failures are logged, never
// propagated: the write that triggered the event has already committed
// and must not be rolled back over a notification.
func (p *Publisher) RecordsChanged(ctx context.Context, userID, table, action string) {
	if p == nil || p.pub == nil {
		return
	}
	ev := RecordsChanged{UserID: userID, Table: table, Action: action, OccurredAt: time.Now().UTC()}
	if err := p.pub.PublishJSON(ctx, ev); err != nil && p.logger != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"table":   table,
			"action":  action,
		}).Warn("records changed publish failed")
	}
}
