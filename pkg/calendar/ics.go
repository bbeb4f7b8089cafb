package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// WriteICS encodes the events as a VCALENDAR with one VEVENT per event and
// a display VALARM at the computed wake time, so any stock calendar client
// rings the alarm this engine derived.
func WriteICS(w io.Writer, events []*Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//wakecal//EN")

	for _, e := range events {
		vevent := ical.NewComponent(ical.CompEvent)
		vevent.Props.SetText(ical.PropUID, uuid.New().String())
		vevent.Props.SetText(ical.PropSummary, e.EventName)
		vevent.Props.SetText(ical.PropLocation, e.AddressTo)
		vevent.Props.SetText(ical.PropDescription, e.Details())
		vevent.Props.SetDateTime(ical.PropDateTimeStart, e.Arrival)
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())

		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, fmt.Sprintf("Get ready: %s", e.EventName))
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = triggerValue(e.ReadyMin)
		alarm.Props.Set(trigger)
		vevent.Children = append(vevent.Children, alarm)

		cal.Children = append(cal.Children, vevent)
	}

	return ical.NewEncoder(w).Encode(cal)
}

// triggerValue renders the alarm offset as an ISO-8601 duration relative to
// the event start. A negative ready time means the alarm fires after the
// event begins.
func triggerValue(readyMin int) string {
	if readyMin < 0 {
		return fmt.Sprintf("PT%dM", -readyMin)
	}
	return fmt.Sprintf("-PT%dM", readyMin)
}
