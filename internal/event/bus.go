package event

import (
	"log/slog"
	"slices"
)

// Handler receives published events.
type Handler func(Event)

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID int

type subscription struct {
	id      SubscriptionID
	filter  Filter
	handler Handler
}

// Bus is a synchronous publish/subscribe bus.
//
// Publish delivers to matching subscribers in subscription order before it
// returns. Subscriptions added or removed by a handler take effect from the
// next Publish. Not safe for concurrent use.
type Bus struct {
	subs   []subscription
	counts [numTypes]int
	nextID SubscriptionID
	logger *slog.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBusLogger sets the logger used for delivery tracing.
func WithBusLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = l
	}
}

// NewBus returns a bus with no subscribers.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for events matching f.
func (b *Bus) Subscribe(f Filter, h Handler) SubscriptionID {
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, filter: f, handler: h})
	if f.Type.Valid() {
		b.counts[f.Type]++
	}
	return b.nextID
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) []SubscriptionID {
	ids := make([]SubscriptionID, 0, numTypes-1)
	for _, t := range Types() {
		ids = append(ids, b.Subscribe(All(t), h))
	}
	return ids
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	i := slices.IndexFunc(b.subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return
	}
	if t := b.subs[i].filter.Type; t.Valid() {
		b.counts[t]--
	}
	b.subs = slices.Delete(slices.Clone(b.subs), i, i+1)
}

// HasSubscribers reports whether any subscription exists for type t.
func (b *Bus) HasSubscribers(t Type) bool {
	return t.Valid() && b.counts[t] > 0
}

// Publish delivers e to every matching subscriber.
func (b *Bus) Publish(e Event) {
	subs := b.subs
	delivered := 0
	for _, s := range subs {
		if s.filter.Matches(e) {
			s.handler(e)
			delivered++
		}
	}
	b.logger.Debug("event published",
		"event_type", e.Type().String(),
		"delivered", delivered,
	)
}
