package notify

import (
	"context"
)

// EmailMessage is a rendered email ready for the delivery gateway.
type EmailMessage struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// EmailSender is the Email Delivery Gateway contract. Implementations must
// honor context cancellation; the dispatcher calls Send with a bounded
// timeout and treats any error as a per-recipient email failure.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
