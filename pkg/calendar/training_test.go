package calendar

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wakecal/pkg/transport"
)

func TestDeletingEnrichedEventAppendsTrainingRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "training.csv")
	s := newTestStore(t)
	s.SetTrainingLog(logPath)

	arrival := time.Date(2026, time.December, 5, 19, 0, 0, 0, time.Local) // a Saturday
	e := NewEvent(EventParams{
		AddressFrom:     "12 Oak St",
		AddressTo:       "1 Harbor Rd",
		EventName:       "Concert",
		OriginName:      "Home",
		DestName:        "Hall",
		Arrival:         arrival,
		Transport:       transport.New(transport.BikingType, 3600),
		ImportanceScale: 4,
	}, &PlaceInfo{
		OriginPlaceID:   "place-origin",
		DestPlaceID:     "place-dest",
		Rating:          4.7,
		PriceLevel:      2,
		OpeningPeriod:   "18:00-23:00",
		TravelDistanceM: 9000,
	})
	s.Add(e)
	s.Remove(e)

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("training log missing: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read training log: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if len(rec) != 17 {
		t.Fatalf("expected 17 fields, got %d: %v", len(rec), rec)
	}
	if rec[1] != "place-origin" || rec[3] != "place-dest" {
		t.Errorf("place ids wrong: %v", rec)
	}
	if rec[5] != "Saturday" {
		t.Errorf("expected Saturday, got %s", rec[5])
	}
	// One-hot transport vector: Driving, Transit, Biking, Walking.
	if rec[10] != "-1" || rec[11] != "-1" || rec[12] != "1" || rec[13] != "-1" {
		t.Errorf("one-hot vector wrong: %v", rec[10:14])
	}
}

func TestDeletingPlainEventWritesNoRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "training.csv")
	s := newTestStore(t)
	s.SetTrainingLog(logPath)

	e := eventAt(time.Date(2026, time.December, 5, 19, 0, 0, 0, time.Local))
	s.Add(e)
	s.Remove(e)

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("plain event deletion must not create a training log")
	}
}
