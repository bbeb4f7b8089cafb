// Package calendar implements the event-scheduling and alarm-computation
// engine: the event entity and its variants, the arrival-time-keyed store,
// the raw-request queue, and file persistence.
package calendar

import (
	"fmt"
	"time"

	"wakecal/pkg/transport"
)

// timeLayout is the human-readable layout used everywhere an arrival or
// alarm time is shown.
const timeLayout = "Jan 02 2006 - 15:04"

// Preparation constants. Every event gets a base preparation window plus an
// importance-scaled margin; the margin factor differs between the enriched
// and the without-info variant (the latter captures the extra uncertainty of
// having no external data).
const (
	basePrepareMin        = 30
	importanceFactor      = 5 // enriched variant, per whole importance point
	importanceFactorNoInf = 6 // without-info variant, applied to the raw scale
)

// PlaceInfo carries enrichment data resolved from an external places/travel
// API. It is used for export and the training side-channel only; alarm
// computation never reads it.
type PlaceInfo struct {
	OriginPlaceID   string  `json:"origin_place_id"`
	DestPlaceID     string  `json:"dest_place_id"`
	Rating          float64 `json:"rating"`
	PriceLevel      int     `json:"price_level"`
	OpeningPeriod   string  `json:"opening_period"`
	TravelDistanceM int     `json:"travel_distance_m"`
}

// Event is a scheduled calendar event with a computed wake alarm.
// The arrival time is the store's primary key; Place is nil for the
// without-info variant.
type Event struct {
	AddressFrom     string
	AddressTo       string
	EventName       string
	OriginName      string
	DestName        string
	Arrival         time.Time
	Transport       transport.Transportation
	ImportanceScale float64

	// Derived at construction; ReadyMin and Alarm shift together via
	// AdjustReadyTime.
	PreparingMin int
	TravelMin    int
	ReadyMin     int
	Alarm        time.Time

	Place *PlaceInfo
}

// EventParams is the validated raw input an event is built from.
type EventParams struct {
	AddressFrom     string
	AddressTo       string
	EventName       string
	OriginName      string
	DestName        string
	Arrival         time.Time
	Transport       transport.Transportation
	ImportanceScale float64
}

// HasPlaceInfo reports whether the event carries enrichment data.
func (e *Event) HasPlaceInfo() bool {
	return e.Place != nil
}

// AdjustReadyTime adds deltaMin to the recommended ready time and moves the
// alarm earlier by the same amount. No bounds are enforced: a large enough
// delta pushes the alarm into the past, a negative one past the arrival.
// Display code handles the negative case ("after the event").
func (e *Event) AdjustReadyTime(deltaMin int) {
	e.ReadyMin += deltaMin
	e.Alarm = e.Alarm.Add(-time.Duration(deltaMin) * time.Minute)
}

// Copy returns an independent copy safe for the caller to mutate.
func (e *Event) Copy() *Event {
	dup := *e
	if e.Place != nil {
		place := *e.Place
		dup.Place = &place
	}
	return &dup
}

// Equal reports event identity: both addresses, arrival time and transport
// mode must match. Enriched events additionally compare place identity, and
// an enriched event never equals a plain one.
func (e *Event) Equal(other *Event) bool {
	if other == nil {
		return false
	}
	if e.HasPlaceInfo() != other.HasPlaceInfo() {
		return false
	}
	if e.HasPlaceInfo() {
		if e.Place.OriginPlaceID != other.Place.OriginPlaceID ||
			e.Place.DestPlaceID != other.Place.DestPlaceID {
			return false
		}
	}
	return e.AddressFrom == other.AddressFrom &&
		e.AddressTo == other.AddressTo &&
		e.Arrival.Equal(other.Arrival) &&
		e.Transport.Equal(other.Transport)
}

// ArrivalString returns the formatted arrival time.
func (e *Event) ArrivalString() string {
	return e.Arrival.Format(timeLayout)
}

// AlarmString returns the formatted alarm time.
func (e *Event) AlarmString() string {
	return e.Alarm.Format(timeLayout)
}

// Summary returns the short list-view block for the event.
func (e *Event) Summary() string {
	return fmt.Sprintf("---%s---\n%s  -->  %s\nAlarm at: %s",
		e.ArrivalString(), e.OriginName, e.DestName, e.AlarmString())
}

// Details returns the full detail-view block: arrival, route, travel
// duration and the signed lead-time framing. A negative ready time reads
// "after the event".
func (e *Event) Details() string {
	lead := "before"
	if e.ReadyMin < 0 {
		lead = "after"
	}
	ready := e.ReadyMin
	if ready < 0 {
		ready = -ready
	}
	travelUnit := "minutes"
	if e.TravelMin == 1 {
		travelUnit = "minute"
	}
	header := fmt.Sprintf("Date & Time:\t%s\nOrigin:\t%s\nDestination:\t%s\nTravel by:\t%s\n",
		e.ArrivalString(), e.AddressFrom, e.AddressTo, e.Transport)
	if !e.HasPlaceInfo() {
		return header + fmt.Sprintf("Estimation not available\nAlarm Time:\t%s\n%d minutes %s the event",
			e.AlarmString(), ready, lead)
	}
	return header + fmt.Sprintf("Travel Duration: %d %s\nAlarm Time:\t%s\n%d minutes %s the event",
		e.TravelMin, travelUnit, e.AlarmString(), ready, lead)
}

func (e *Event) String() string {
	return e.Summary()
}
