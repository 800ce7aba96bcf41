package reminder

import (
	"image"

	"github.com/sirupsen/logrus"
)

// Action is a button offered on a reminder notification.
type Action string

const (
	ActionOpen   Action = "open"
	ActionSnooze Action = "snooze"
	ActionDone   Action = "done"
	ActionCopy   Action = "copy"
)

// Notification is what the fire handler asks the platform to display.
type Notification struct {
	ID      string
	Title   string
	Body    string
	Actions []Action
	// Preview is an optional, already downscaled image. Nil when the item has
	// no visual or loading it failed.
	Preview image.Image
}

// Notifier abstracts the platform notification surface.
type Notifier interface {
	Show(n Notification) error
	// Cancel removes a currently shown notification; no-op when none.
	Cancel(id string)
}

// ConsoleNotifier renders notifications into the log stream. It is the CLI
// daemon's stand-in for a system notification service.
type ConsoleNotifier struct {
	log logrus.FieldLogger
}

func NewConsoleNotifier(logger logrus.FieldLogger) *ConsoleNotifier {
	return &ConsoleNotifier{log: logger.WithField("component", "notifier")}
}

func (n *ConsoleNotifier) Show(notif Notification) error {
	fields := logrus.Fields{
		"item_id": notif.ID,
		"title":   notif.Title,
		"actions": notif.Actions,
	}
	if notif.Preview != nil {
		b := notif.Preview.Bounds()
		fields["preview"] = b.Dx()*b.Dy() > 0
	}
	n.log.WithFields(fields).Info("Reminder: " + notif.Body)
	return nil
}

func (n *ConsoleNotifier) Cancel(id string) {
	n.log.WithField("item_id", id).Debug("Notification dismissed")
}
