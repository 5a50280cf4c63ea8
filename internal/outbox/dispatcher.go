package outbox

import (
	"github.com/growthlab/sitescope/internal/notifications"
	"github.com/growthlab/sitescope/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// batchSize bounds how many pending emails one dispatch pass picks up.
const batchSize = 50

// Dispatcher delivers pending outbox emails on a fixed schedule. A failed
// send keeps the row pending and increments its attempt count; once the
// attempt cap is reached the row is marked failed and left for an operator.
type Dispatcher struct {
	store       *store.Store
	sender      notifications.Sender
	schedule    string
	maxAttempts int
	cron        *cron.Cron
}

// NewDispatcher creates a new outbox dispatcher
func NewDispatcher(st *store.Store, sender notifications.Sender, schedule string, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		store:       st,
		sender:      sender,
		schedule:    schedule,
		maxAttempts: maxAttempts,
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start begins scheduled delivery of pending emails.
func (d *Dispatcher) Start() error {
	_, err := d.cron.AddFunc(d.schedule, func() {
		if err := d.DeliverPending(); err != nil {
			logrus.Errorf("Outbox delivery pass failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	d.cron.Start()
	logrus.Infof("Outbox dispatcher started (schedule %q, max %d attempts)", d.schedule, d.maxAttempts)
	return nil
}

// Stop stops the scheduler
func (d *Dispatcher) Stop() {
	if d.cron != nil {
		d.cron.Stop()
		logrus.Info("Outbox dispatcher stopped")
	}
}

// DeliverPending runs one delivery pass over the pending outbox rows.
func (d *Dispatcher) DeliverPending() error {
	emails, err := d.store.PendingEmails(batchSize)
	if err != nil {
		return err
	}

	if len(emails) == 0 {
		return nil
	}

	logrus.Infof("Delivering %d pending notification emails", len(emails))

	for i := range emails {
		email := &emails[i]
		attempts := email.Attempts + 1

		if err := d.sender.Send(email); err != nil {
			logrus.Errorf("Failed to send email %d to %s (attempt %d/%d): %v",
				email.ID, email.Recipient, attempts, d.maxAttempts, err)
			if markErr := d.store.MarkEmailFailed(email.ID, attempts, d.maxAttempts, err.Error()); markErr != nil {
				logrus.Errorf("Failed to record email failure for %d: %v", email.ID, markErr)
			}
			continue
		}

		if err := d.store.MarkEmailSent(email.ID, attempts); err != nil {
			logrus.Errorf("Failed to mark email %d as sent: %v", email.ID, err)
			continue
		}

		logrus.Infof("Sent %q to %s", email.Subject, email.Recipient)
	}

	return nil
}
