package events

import "github.com/samber/lo"

// Recorder keeps every notification it receives.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify stores e.
func (r *Recorder) Notify(e Event) {
	r.events = append(r.events, e)
}

// Events returns all recorded notifications.
func (r *Recorder) Events() []Event {
	return r.events
}

// Of returns the notifications of type t.
func (r *Recorder) Of(t EventType) []Event {
	return lo.Filter(r.events, func(e Event, _ int) bool { return e.Type == t })
}

// Count returns how many notifications of type t were recorded.
func (r *Recorder) Count(t EventType) int {
	return lo.CountBy(r.events, func(e Event) bool { return e.Type == t })
}

// Last returns the last notification of type t.
func (r *Recorder) Last(t EventType) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// Types returns the recorded notification types in order.
func (r *Recorder) Types() []EventType {
	return lo.Map(r.events, func(e Event, _ int) EventType { return e.Type })
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.events = nil
}
