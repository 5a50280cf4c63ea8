package notifications

import "github.com/growthlab/sitescope/internal/models"

// Sender delivers a single composed email. Implementations must be safe for
// repeated delivery attempts of the same message.
type Sender interface {
	Send(email *models.OutboxEmail) error
}
