package calendar

import (
	"encoding/csv"
	"fmt"
	"os"

	"wakecal/pkg/transport"
)

// appendTrainingRecord appends one CSV record for a deleted enriched event.
// Field order: origin address, origin place id, destination address,
// destination place id, arrival time, day-of-week, opening period,
// importance scale, price level, rating, one-hot transport vector
// (Driving, Transit, Biking, Walking as +1/-1), travel minutes, travel
// distance meters, recommended ready minutes.
func appendTrainingRecord(path string, e *Event) error {
	if e.Place == nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	record := []string{
		e.AddressFrom,
		e.Place.OriginPlaceID,
		e.AddressTo,
		e.Place.DestPlaceID,
		e.ArrivalString(),
		e.Arrival.Weekday().String(),
		e.Place.OpeningPeriod,
		fmt.Sprintf("%g", e.ImportanceScale),
		fmt.Sprintf("%d", e.Place.PriceLevel),
		fmt.Sprintf("%g", e.Place.Rating),
	}
	for _, mode := range []transport.Mode{transport.Driving, transport.Transit, transport.Biking, transport.Walking} {
		if e.Transport.Mode == mode {
			record = append(record, "1")
		} else {
			record = append(record, "-1")
		}
	}
	record = append(record,
		fmt.Sprintf("%d", e.TravelMin),
		fmt.Sprintf("%d", e.Place.TravelDistanceM),
		fmt.Sprintf("%d", e.ReadyMin),
	)

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
