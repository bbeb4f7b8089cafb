package calendar

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wakecal/pkg/transport"
)

// dbFile is the sqlite backing file holding the serialized arrival→event
// mapping. The contract is a full round-trip of the event set, not a stable
// byte layout.
type dbFile struct {
	db *sql.DB
}

func openDBFile(path string) (*dbFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// DELETE journal mode for immediate writes; the file is the durable
	// copy of an in-memory store, not a live database.
	connStr := path + "?_journal_mode=DELETE&_synchronous=FULL"
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open backing file: %w", err)
	}

	// Single connection; the store serializes access anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to backing file: %w", err)
	}

	f := &dbFile{db: db}
	if err := f.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate backing file: %w", err)
	}
	return f, nil
}

func (f *dbFile) close() error {
	return f.db.Close()
}

func (f *dbFile) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		arrival_unix INTEGER PRIMARY KEY,
		address_from TEXT NOT NULL,
		address_to TEXT NOT NULL,
		event_name TEXT,
		origin_name TEXT,
		dest_name TEXT,
		mode TEXT NOT NULL,
		duration_sec REAL NOT NULL,
		importance REAL NOT NULL,
		ready_min INTEGER NOT NULL,
		place_info TEXT
	);
	`
	_, err := f.db.Exec(schema)
	return err
}

// saveEvents replaces the persisted set with the given events in one
// transaction.
func (f *dbFile) saveEvents(events []*Event) error {
	tx, err := f.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return err
	}
	for _, e := range events {
		var placeJSON sql.NullString
		if e.Place != nil {
			data, err := json.Marshal(e.Place)
			if err != nil {
				return fmt.Errorf("failed to encode place info: %w", err)
			}
			placeJSON = sql.NullString{String: string(data), Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO events (arrival_unix, address_from, address_to, event_name, origin_name, dest_name, mode, duration_sec, importance, ready_min, place_info)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			storeKey(e.Arrival), e.AddressFrom, e.AddressTo, e.EventName, e.OriginName, e.DestName,
			wireIdentifier(e.Transport.Mode), e.Transport.DurationSec, e.ImportanceScale, e.ReadyMin, placeJSON)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// loadEvents rebuilds the full event set. Each event is reconstructed
// through the factory and then shifted to its persisted ready time, so
// earlier AdjustReadyTime calls survive the round-trip.
func (f *dbFile) loadEvents() ([]*Event, error) {
	rows, err := f.db.Query(`SELECT arrival_unix, address_from, address_to, event_name, origin_name, dest_name, mode, duration_sec, importance, ready_min, place_info FROM events ORDER BY arrival_unix`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var (
		arrivalUnix int64
		p           EventParams
		eventName   sql.NullString
		originName  sql.NullString
		destName    sql.NullString
		mode        string
		durationSec float64
		readyMin    int
		placeJSON   sql.NullString
	)
	err := rows.Scan(&arrivalUnix, &p.AddressFrom, &p.AddressTo, &eventName, &originName, &destName,
		&mode, &durationSec, &p.ImportanceScale, &readyMin, &placeJSON)
	if err != nil {
		return nil, err
	}
	p.EventName = eventName.String
	p.OriginName = originName.String
	p.DestName = destName.String
	p.Arrival = time.Unix(arrivalUnix, 0)
	p.Transport = transport.New(mode, int(durationSec))

	var place *PlaceInfo
	if placeJSON.Valid && placeJSON.String != "" {
		place = &PlaceInfo{}
		if err := json.Unmarshal([]byte(placeJSON.String), place); err != nil {
			return nil, fmt.Errorf("failed to decode place info: %w", err)
		}
	}

	e := NewEvent(p, place)
	if delta := readyMin - e.ReadyMin; delta != 0 {
		e.AdjustReadyTime(delta)
	}
	return e, nil
}

// wireIdentifier maps a mode back to the identifier the factory accepts.
func wireIdentifier(m transport.Mode) string {
	switch m {
	case transport.Driving:
		return transport.DrivingType
	case transport.Biking:
		return transport.BikingType
	case transport.Walking:
		return transport.WalkingType
	default:
		return transport.TransitType
	}
}
