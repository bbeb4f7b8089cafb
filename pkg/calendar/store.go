package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wakecal/pkg/transport"
)

// ErrTimeOccupied is returned by Add when another event already claims the
// arrival timestamp.
var ErrTimeOccupied = errors.New("calendar: arrival time already occupied")

// Enricher resolves a raw request against an external place/travel source.
// It returns the place payload and the authoritative travel duration in
// seconds. A failed enrichment degrades the event to the without-info
// variant; it never blocks materialization.
type Enricher interface {
	Enrich(ctx context.Context, req RawRequest) (PlaceInfo, int, error)
}

// Store keeps the scheduled events ordered by arrival time, with uniqueness
// on the arrival key, synchronous listener fan-out and an async ingestion
// queue. One mutex guards the event map and the listener list, so the
// check-then-insert sequence is atomic inside Add.
type Store struct {
	mu        sync.Mutex
	events    map[int64]*Event
	listeners []Listener
	queue     *requestQueue

	db          *dbFile
	trainingLog string
	log         zerolog.Logger
}

// NewStore creates a store, backed by the sqlite file at path when path is
// non-empty. A pre-existing file is loaded immediately; open or load
// failures are logged and leave the store empty and/or memory-only, never
// fatal.
func NewStore(path string, logger zerolog.Logger) *Store {
	s := &Store{
		events: make(map[int64]*Event),
		queue:  newRequestQueue(),
		log:    logger,
	}
	if path == "" {
		return s
	}
	db, err := openDBFile(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to open backing file, continuing in memory")
		return s
	}
	s.db = db
	events, err := db.loadEvents()
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to restore events, starting empty")
		return s
	}
	for _, e := range events {
		s.events[storeKey(e.Arrival)] = e
	}
	if len(events) > 0 {
		logger.Info().Int("count", len(events)).Str("path", path).Msg("Restored events")
	}
	return s
}

// SetTrainingLog sets the CSV file that receives a training record whenever
// an enriched event is deleted. Empty disables the side-channel.
func (s *Store) SetTrainingLog(path string) {
	s.mu.Lock()
	s.trainingLog = path
	s.mu.Unlock()
}

// Subscribe registers a listener. Listeners are notified in registration
// order.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Add inserts the event at its arrival key and notifies listeners. A
// colliding key is rejected with ErrTimeOccupied; producers should still
// pre-check with IsTimeOccupied to fail before paying for construction.
func (s *Store) Add(e *Event) error {
	key := storeKey(e.Arrival)
	s.mu.Lock()
	if _, ok := s.events[key]; ok {
		s.mu.Unlock()
		return ErrTimeOccupied
	}
	s.events[key] = e
	s.mu.Unlock()
	s.notify(Change{Kind: EventAdded, Event: e})
	return nil
}

// IsTimeOccupied reports whether an event already claims the arrival
// timestamp.
func (s *Store) IsTimeOccupied(arrival time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[storeKey(arrival)]
	return ok
}

// Events returns copies of all events sorted by arrival time ascending.
// Mutating the result does not affect the store.
func (s *Store) Events() []*Event {
	s.mu.Lock()
	out := make([]*Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Copy())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Arrival.Before(out[j].Arrival) })
	return out
}

// EventAt returns a copy of the event at the given arrival time, or nil.
func (s *Store) EventAt(arrival time.Time) *Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[storeKey(arrival)]; ok {
		return e.Copy()
	}
	return nil
}

// Remove deletes the event stored at the given event's arrival key and
// notifies listeners. Deleting an enriched event appends a training record
// when a training log is configured; append failures are logged only.
func (s *Store) Remove(e *Event) bool {
	key := storeKey(e.Arrival)
	s.mu.Lock()
	stored, ok := s.events[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.events, key)
	trainingLog := s.trainingLog
	s.mu.Unlock()

	if trainingLog != "" && stored.HasPlaceInfo() {
		if err := appendTrainingRecord(trainingLog, stored); err != nil {
			s.log.Error().Err(err).Str("path", trainingLog).Msg("Failed to append training record")
		}
	}
	s.notify(Change{Kind: EventRemoved, Event: stored})
	return true
}

// Edit shifts the ready time and alarm of the stored event at the given
// event's arrival key by deltaMin. The arrival key does not change, so no
// re-keying happens. Listeners are notified with the mutated event.
func (s *Store) Edit(e *Event, deltaMin int) bool {
	s.mu.Lock()
	stored, ok := s.events[storeKey(e.Arrival)]
	if !ok {
		s.mu.Unlock()
		return false
	}
	stored.AdjustReadyTime(deltaMin)
	s.mu.Unlock()
	s.notify(Change{Kind: EventEdited, Event: stored})
	return true
}

// EnqueueRequest appends a raw request to the pending queue. Safe for
// concurrent producers; never blocks.
func (s *Store) EnqueueRequest(r RawRequest) {
	s.queue.enqueue(r)
}

// NextRequest blocks until a raw request is available or ctx is cancelled.
// Cancellation is the shutdown signal for the single consumer.
func (s *Store) NextRequest(ctx context.Context) (RawRequest, error) {
	return s.queue.dequeue(ctx)
}

// PendingRequests returns the number of queued raw requests.
func (s *Store) PendingRequests() int {
	return s.queue.len()
}

// Run is the consumer loop: it dequeues raw requests, resolves them through
// the enricher (nil enricher or enrichment failure degrades to the
// without-info variant) and inserts the materialized event. It returns when
// ctx is cancelled.
func (s *Store) Run(ctx context.Context, enricher Enricher) error {
	for {
		req, err := s.NextRequest(ctx)
		if err != nil {
			s.log.Info().Msg("Consumer stopping")
			return err
		}
		s.resolve(ctx, req, enricher)
	}
}

func (s *Store) resolve(ctx context.Context, req RawRequest, enricher Enricher) {
	durationSec := req.DurationSec
	var place *PlaceInfo
	if enricher != nil {
		info, travelSec, err := enricher.Enrich(ctx, req)
		if err != nil {
			s.log.Error().Err(err).Str("request_id", req.ID).Msg("Enrichment failed, using offline estimate")
		} else {
			place = &info
			if travelSec > 0 {
				durationSec = travelSec
			}
		}
	}

	e := NewEvent(EventParams{
		AddressFrom:     req.AddressFrom,
		AddressTo:       req.AddressTo,
		EventName:       req.EventName,
		OriginName:      req.OriginName,
		DestName:        req.DestName,
		Arrival:         req.Arrival,
		Transport:       transport.New(req.Mode, durationSec),
		ImportanceScale: req.ImportanceScale,
	}, place)

	if err := s.Add(e); err != nil {
		s.log.Error().Err(err).Str("request_id", req.ID).Time("arrival", req.Arrival).Msg("Dropping resolved request")
		return
	}
	s.notify(Change{Kind: RequestResolved, Event: e})
}

// Save flushes the full arrival→event mapping to the backing file. A
// memory-only store saves nothing. The caller decides whether a failure is
// worth a retry; the on-disk state simply stays stale.
func (s *Store) Save() error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	events := make([]*Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	s.mu.Unlock()
	return s.db.saveEvents(events)
}

// Close releases the backing file, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.close()
}

// notify fans a change out to the listeners registered at call time.
func (s *Store) notify(c Change) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, l := range listeners {
		l.Update(c)
	}
}

// storeKey is the store's primary key: the arrival time truncated to whole
// seconds. Events are captured at minute granularity, so nothing is lost.
func storeKey(t time.Time) int64 {
	return t.Unix()
}
