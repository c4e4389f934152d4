package events

import (
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// RegisterBookingObservers wires the audit log and booking counters to the bus.
func RegisterBookingObservers(bus *EventBus, logger *zerolog.Logger) {
	audit := func(event *Event) error {
		var p BookingEventPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		logger.Info().
			Str("event", event.Type).
			Int64("booking_id", p.BookingID).
			Int64("item_id", p.ItemID).
			Int64("booker_id", p.BookerID).
			Int64("actor_id", p.ActorID).
			Str("status", p.Status).
			Msg("booking event")
		return nil
	}

	bus.Subscribe(EventBookingCreated, audit)
	bus.Subscribe(EventBookingApproved, audit)
	bus.Subscribe(EventBookingRejected, audit)

	bus.Subscribe(EventBookingCreated, func(_ *Event) error {
		metrics.IncBookingCreated()
		return nil
	})
	decision := func(event *Event) error {
		var p BookingEventPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		metrics.IncBookingDecision(p.Status)
		return nil
	}
	bus.Subscribe(EventBookingApproved, decision)
	bus.Subscribe(EventBookingRejected, decision)
}
