package services

import (
	"github.com/sirupsen/logrus"
)

// Event types published after successful mutations.
const (
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventAddressCreated = "address.created"
	EventAddressUpdated = "address.updated"
	EventAddressDeleted = "address.deleted"
)

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	PublishEvent(eventType string, payload interface{}) error
}

// eventNotifier publishes events without ever failing the caller.
type eventNotifier struct {
	publisher EventPublisher
	log       logrus.FieldLogger
}

func (n eventNotifier) notify(eventType string, payload interface{}) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishEvent(eventType, payload); err != nil {
		n.log.WithError(err).WithField("event", eventType).Warn("failed to publish event")
	}
}
