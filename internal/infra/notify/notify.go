package notify

import (
	"log"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

// Log writes every notification to the standard logger.
type Log struct{}

func (Log) Notify(kind domain.NotificationKind, message string) {
	log.Printf("notify kind=%s message=%q", kind, message)
}

// Multi fans a notification out to every sink, in order.
type Multi []domain.Notifier

func (m Multi) Notify(kind domain.NotificationKind, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(kind, message)
		}
	}
}
