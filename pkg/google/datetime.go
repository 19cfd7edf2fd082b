package google

import (
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

const allDayDateFormat = "2006-01-02"

// NormalizedTimes is the application-side view of a provider event's
// temporal fields.
type NormalizedTimes struct {
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
}

// toProviderTimes translates the caller's instants into Google's dual
// date/date-time shape. All-day events use date-only bounds with an
// exclusive end: a single-day event gets an end date one day after its
// start. Timed events pass through as RFC3339 instants with an IANA
// timezone, falling back to defaultTimezone when the request has none.
func toProviderTimes(startTime, endTime time.Time, allDay bool, timeZone string, defaultTimezone string) (*gcal.EventDateTime, *gcal.EventDateTime) {
	if allDay {
		return &gcal.EventDateTime{
				Date: startTime.UTC().Format(allDayDateFormat),
			}, &gcal.EventDateTime{
				Date: endTime.UTC().AddDate(0, 0, 1).Format(allDayDateFormat),
			}
	}

	if timeZone == "" {
		timeZone = defaultTimezone
	}
	return &gcal.EventDateTime{
			DateTime: startTime.Format(time.RFC3339),
			TimeZone: timeZone,
		}, &gcal.EventDateTime{
			DateTime: endTime.Format(time.RFC3339),
			TimeZone: timeZone,
		}
}

// fromProviderEvent maps a provider event's start/end back into instants.
// An event is all-day iff its start carries a date-only value; all-day
// bounds become noon instants on their dates (noon keeps the date stable
// when rendered in any timezone) with the provider's exclusive end date
// pulled back by one day.
func fromProviderEvent(ev *gcal.Event) (NormalizedTimes, error) {
	if ev.Start == nil || ev.End == nil {
		return NormalizedTimes{}, fmt.Errorf("provider event %s is missing start or end", ev.Id)
	}

	if ev.Start.Date != "" {
		startDate, err := time.Parse(allDayDateFormat, ev.Start.Date)
		if err != nil {
			return NormalizedTimes{}, fmt.Errorf("failed to parse all-day start date %q: %w", ev.Start.Date, err)
		}
		endDate, err := time.Parse(allDayDateFormat, ev.End.Date)
		if err != nil {
			return NormalizedTimes{}, fmt.Errorf("failed to parse all-day end date %q: %w", ev.End.Date, err)
		}
		return NormalizedTimes{
			StartTime: noonOn(startDate),
			EndTime:   noonOn(endDate.AddDate(0, 0, -1)),
			AllDay:    true,
		}, nil
	}

	startTime, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return NormalizedTimes{}, fmt.Errorf("failed to parse start time %q: %w", ev.Start.DateTime, err)
	}
	endTime, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return NormalizedTimes{}, fmt.Errorf("failed to parse end time %q: %w", ev.End.DateTime, err)
	}
	return NormalizedTimes{StartTime: startTime, EndTime: endTime}, nil
}

func noonOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
}
