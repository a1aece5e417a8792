package service

import (
	"context"

	"github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/pubsub"
)

// eventSink publishes domain events after a successful commit. Failures are
// logged and never fail the request.
type eventSink struct {
	pub pubsub.Publisher
}

func newEventSink(pub pubsub.Publisher) eventSink {
	if pub == nil {
		pub = pubsub.NopPublisher{}
	}
	return eventSink{pub: pub}
}

func (s eventSink) emit(ctx context.Context, entity string, id uint, eventType string, payload interface{}) {
	l := log.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, payload)
	if err != nil {
		l.Warn().Err(err).Str("event", eventType).Msg("failed to encode event")
		return
	}
	if err := s.pub.Publish(ctx, pubsub.Channel(entity, id), event); err != nil {
		l.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
