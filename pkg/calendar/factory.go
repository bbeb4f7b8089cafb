package calendar

import "time"

// NewEvent builds an event from validated input, selecting the variant on
// the enrichment payload: a nil payload or a non-positive rating yields the
// without-info variant, anything else embeds the place data. This is the
// single seam where external enrichment enters an event; the engine itself
// never enriches.
func NewEvent(p EventParams, place *PlaceInfo) *Event {
	e := &Event{
		AddressFrom:     p.AddressFrom,
		AddressTo:       p.AddressTo,
		EventName:       p.EventName,
		OriginName:      p.OriginName,
		DestName:        p.DestName,
		Arrival:         p.Arrival,
		Transport:       p.Transport,
		ImportanceScale: p.ImportanceScale,
	}
	if place != nil && place.Rating > 0 {
		info := *place
		e.Place = &info
		e.PreparingMin = basePrepareMin + int(p.ImportanceScale)*importanceFactor
	} else {
		e.PreparingMin = basePrepareMin + int(p.ImportanceScale*importanceFactorNoInf)
	}
	e.TravelMin = p.Transport.TotalTravelMinutes()
	e.ReadyMin = e.PreparingMin + e.TravelMin
	e.Alarm = p.Arrival.Add(-time.Duration(e.ReadyMin) * time.Minute)
	return e
}
