package application

import (
	"context"

	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/internal/pkg/logger"
)

const defaultNotificationLimit = 50

// NotificationCenter keeps the most recent transaction outcomes.
type NotificationCenter struct {
	log   *logger.Logger
	limit int
	items *observable.Value[[]domain.Notification]
}

func NewNotificationCenter(log *logger.Logger, limit int) *NotificationCenter {
	if log == nil {
		log = logger.Nop()
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return &NotificationCenter{
		log:   log,
		limit: limit,
		items: observable.New([]domain.Notification{}),
	}
}

func (c *NotificationCenter) Notify(ctx context.Context, n domain.Notification) {
	switch n.Kind {
	case domain.NotificationFailure:
		c.log.Warn("notification", "operation", n.Operation, "message", n.Message)
	default:
		c.log.Info("notification", "operation", n.Operation, "message", n.Message, "hash", n.TxHash)
	}

	c.items.Update(func(current []domain.Notification) []domain.Notification {
		next := make([]domain.Notification, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, n)
		if len(next) > c.limit {
			next = next[len(next)-c.limit:]
		}
		return next
	})
}

// List returns notifications oldest first.
func (c *NotificationCenter) List() []domain.Notification {
	items := c.items.Get()
	out := make([]domain.Notification, len(items))
	copy(out, items)
	return out
}

func (c *NotificationCenter) Subscribe(fn func([]domain.Notification)) func() {
	return c.items.Subscribe(fn)
}
