// Package transport models the travel modes an event can use and the
// break/overhead math that feeds alarm computation.
package transport

import (
	"errors"
	"strings"
)

// Mode identifies a way of travelling to an event.
type Mode string

const (
	Driving Mode = "Driving"
	Transit Mode = "Transit"
	Biking  Mode = "Biking"
	Walking Mode = "Walking"
)

// Wire identifiers accepted by New and ParseMode (case-insensitive).
const (
	DrivingType = "DRIVING"
	TransitType = "TRANSIT"
	BikingType  = "BICYCLING"
	WalkingType = "WALKING"
)

// ErrUnknownMode is returned by ParseMode for unrecognized identifiers.
var ErrUnknownMode = errors.New("transport: unknown mode")

// modeSpec holds the per-mode constants. A break is taken every
// breakIntervalSec seconds of travel; breakIntervalSec == 0 means the mode
// takes no breaks. readyMin is the fixed boarding/parking overhead.
type modeSpec struct {
	breakIntervalSec float64
	breakMin         int
	readyMin         int
}

var specs = map[Mode]modeSpec{
	Driving: {breakIntervalSec: 7200, breakMin: 15, readyMin: 5},
	Transit: {breakIntervalSec: 0, breakMin: 0, readyMin: 10},
	Biking:  {breakIntervalSec: 3600, breakMin: 10, readyMin: 5},
	Walking: {breakIntervalSec: 1800, breakMin: 5, readyMin: 2},
}

// Transportation is an immutable travel-mode calculator for a single trip.
type Transportation struct {
	Mode        Mode    `json:"mode"`
	DurationSec float64 `json:"duration_sec"`
}

// New maps a mode identifier and a travel duration to a Transportation.
// The match is case-insensitive; unrecognized identifiers fall back to
// Transit. That fallback mirrors the long-standing factory contract, so it
// never fails; callers that want a failure use ParseMode first.
func New(identifier string, durationSec int) Transportation {
	mode, err := ParseMode(identifier)
	if err != nil {
		mode = Transit
	}
	return Transportation{Mode: mode, DurationSec: float64(durationSec)}
}

// ParseMode resolves a wire identifier to a Mode, or ErrUnknownMode.
func ParseMode(identifier string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(identifier)) {
	case DrivingType:
		return Driving, nil
	case TransitType:
		return Transit, nil
	case BikingType:
		return Biking, nil
	case WalkingType:
		return Walking, nil
	}
	return "", ErrUnknownMode
}

// BreakMinutes returns the total break time in minutes for the trip:
// one break per full break interval travelled. Modes without a break
// interval return zero.
func (t Transportation) BreakMinutes() int {
	spec := specs[t.Mode]
	if spec.breakIntervalSec <= 0 || t.DurationSec <= 0 {
		return 0
	}
	breaks := int(t.DurationSec / spec.breakIntervalSec)
	return breaks * spec.breakMin
}

// ReadyMinutes returns the fixed per-mode overhead (parking, waiting for a
// connection, locking the bike).
func (t Transportation) ReadyMinutes() int {
	return specs[t.Mode].readyMin
}

// TotalTravelMinutes returns break time plus fixed overhead plus the travel
// duration itself, in whole minutes.
func (t Transportation) TotalTravelMinutes() int {
	dur := 0
	if t.DurationSec > 0 {
		dur = int(t.DurationSec / 60)
	}
	return t.BreakMinutes() + t.ReadyMinutes() + dur
}

// Equal reports whether two transports are the same mode. Duration is
// deliberately not part of identity; event equality relies on this coarse
// contract.
func (t Transportation) Equal(other Transportation) bool {
	return t.Mode == other.Mode
}

func (t Transportation) String() string {
	return string(t.Mode)
}
