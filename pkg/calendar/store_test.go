package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wakecal/pkg/transport"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore("", zerolog.Nop())
}

func eventAt(arrival time.Time) *Event {
	return NewEvent(EventParams{
		AddressFrom:     "12 Oak St",
		AddressTo:       "900 Pine Ave",
		EventName:       "Meeting",
		OriginName:      "Home",
		DestName:        "Office",
		Arrival:         arrival,
		Transport:       transport.New(transport.DrivingType, 900),
		ImportanceScale: 3,
	}, nil)
}

func TestEventsSortedByArrival(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.September, 20, 8, 0, 0, 0, time.Local)

	// Insert out of order.
	for _, offset := range []int{5, 1, 3, 2, 4} {
		if err := s.Add(eventAt(base.Add(time.Duration(offset) * time.Hour))); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	events := s.Events()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Arrival.Before(events[i-1].Arrival) {
			t.Fatalf("events out of order at index %d", i)
		}
	}
}

func TestAddRejectsOccupiedTime(t *testing.T) {
	s := newTestStore(t)
	arrival := time.Date(2026, time.September, 20, 8, 0, 0, 0, time.Local)

	if err := s.Add(eventAt(arrival)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if !s.IsTimeOccupied(arrival) {
		t.Error("expected time to be occupied")
	}
	err := s.Add(eventAt(arrival))
	if !errors.Is(err, ErrTimeOccupied) {
		t.Fatalf("expected ErrTimeOccupied, got %v", err)
	}
	if len(s.Events()) != 1 {
		t.Error("colliding insert must not change the store")
	}
}

func TestListenersNotifiedInRegistrationOrder(t *testing.T) {
	s := newTestStore(t)
	var order []string
	s.Subscribe(ListenerFunc(func(c Change) { order = append(order, "first:"+string(c.Kind)) }))
	s.Subscribe(ListenerFunc(func(c Change) { order = append(order, "second:"+string(c.Kind)) }))

	arrival := time.Date(2026, time.September, 20, 8, 0, 0, 0, time.Local)
	e := eventAt(arrival)
	s.Add(e)
	s.Edit(e, 10)
	s.Remove(e)

	want := []string{
		"first:added", "second:added",
		"first:edited", "second:edited",
		"first:removed", "second:removed",
	}
	if len(order) != len(want) {
		t.Fatalf("expected %d notifications, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("notification %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestEditShiftsStoredEvent(t *testing.T) {
	s := newTestStore(t)
	arrival := time.Date(2026, time.September, 20, 8, 0, 0, 0, time.Local)
	e := eventAt(arrival)
	s.Add(e)

	origAlarm := e.Alarm
	if !s.Edit(e, 15) {
		t.Fatal("edit reported no event")
	}
	updated := s.EventAt(arrival)
	if updated.ReadyMin != e.ReadyMin+15 {
		t.Errorf("expected ready %d, got %d", e.ReadyMin+15, updated.ReadyMin)
	}
	if !updated.Alarm.Equal(origAlarm.Add(-15 * time.Minute)) {
		t.Error("alarm did not shift with the edit")
	}
	// The arrival key must not move.
	if !s.IsTimeOccupied(arrival) {
		t.Error("edit must not re-key the event")
	}
}

func TestEventsReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	arrival := time.Date(2026, time.September, 20, 8, 0, 0, 0, time.Local)
	s.Add(eventAt(arrival))

	events := s.Events()
	events[0].AdjustReadyTime(500)

	if got := s.EventAt(arrival); got.ReadyMin == events[0].ReadyMin {
		t.Error("mutating a listed event leaked into the store")
	}
}

func TestRemoveMissingEvent(t *testing.T) {
	s := newTestStore(t)
	arrival := time.Date(2026, time.September, 20, 8, 0, 0, 0, time.Local)
	if s.Remove(eventAt(arrival)) {
		t.Error("removing an absent event should report false")
	}
}

// stubEnricher records requests and either enriches or fails.
type stubEnricher struct {
	fail bool
	seen []string
}

func (e *stubEnricher) Enrich(ctx context.Context, req RawRequest) (PlaceInfo, int, error) {
	e.seen = append(e.seen, req.ID)
	if e.fail {
		return PlaceInfo{}, 0, errors.New("lookup unavailable")
	}
	return PlaceInfo{Rating: 4.2, OriginPlaceID: "o-" + req.ID, DestPlaceID: "d-" + req.ID}, 1800, nil
}

func rawRequestAt(id string, arrival time.Time) RawRequest {
	return RawRequest{
		ID:              id,
		AddressFrom:     "12 Oak St",
		AddressTo:       "900 Pine Ave",
		EventName:       "Meeting",
		OriginName:      "Home",
		DestName:        "Office",
		Arrival:         arrival,
		Mode:            transport.TransitType,
		DurationSec:     600,
		ImportanceScale: 2,
	}
}

func TestRunResolvesRequestsInOrder(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.September, 21, 9, 0, 0, 0, time.Local)

	var resolved []string
	done := make(chan struct{})
	s.Subscribe(ListenerFunc(func(c Change) {
		if c.Kind != RequestResolved {
			return
		}
		resolved = append(resolved, c.Event.Place.OriginPlaceID)
		if len(resolved) == 3 {
			close(done)
		}
	}))

	enricher := &stubEnricher{}
	for i, id := range []string{"r1", "r2", "r3"} {
		s.EnqueueRequest(rawRequestAt(id, base.Add(time.Duration(i)*time.Hour)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		s.Run(ctx, enricher)
		close(runDone)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not resolve all requests")
	}
	cancel()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop on cancellation")
	}

	want := []string{"o-r1", "o-r2", "o-r3"}
	for i := range want {
		if resolved[i] != want[i] {
			t.Errorf("resolution %d: expected %s, got %s", i, want[i], resolved[i])
		}
	}
	// The enriched travel duration overrides the request's own estimate.
	e := s.EventAt(base)
	if e == nil || !e.HasPlaceInfo() {
		t.Fatal("expected an enriched stored event")
	}
	if e.TravelMin != 10+30 { // transit overhead + 1800s from the enricher
		t.Errorf("expected travel minutes from enrichment, got %d", e.TravelMin)
	}
}

func TestRunDegradesOnEnrichmentFailure(t *testing.T) {
	s := newTestStore(t)
	arrival := time.Date(2026, time.September, 21, 9, 0, 0, 0, time.Local)

	added := make(chan *Event, 1)
	s.Subscribe(ListenerFunc(func(c Change) {
		if c.Kind == EventAdded {
			added <- c.Event
		}
	}))

	s.EnqueueRequest(rawRequestAt("r1", arrival))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, &stubEnricher{fail: true})

	select {
	case e := <-added:
		if e.HasPlaceInfo() {
			t.Error("failed enrichment should yield the without-info variant")
		}
		if e.TravelMin != 10+10 { // transit overhead + the request's own 600s
			t.Errorf("expected the offline travel estimate, got %d", e.TravelMin)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request was never materialized")
	}
}
