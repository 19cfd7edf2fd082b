package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func TestToProviderTimes(t *testing.T) {
	t.Run("single-day all-day event gets an exclusive end one day later", func(t *testing.T) {
		day := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

		start, end := toProviderTimes(day, day, true, "", "Europe/Warsaw")

		assert.Equal(t, "2024-06-01", start.Date)
		assert.Equal(t, "2024-06-02", end.Date)
		assert.Empty(t, start.DateTime)
		assert.Empty(t, end.DateTime)
	})

	t.Run("multi-day all-day event ends the day after its last day", func(t *testing.T) {
		start, end := toProviderTimes(
			time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			true, "", "Europe/Warsaw")

		assert.Equal(t, "2024-06-01", start.Date)
		assert.Equal(t, "2024-06-04", end.Date)
	})

	t.Run("timed event keeps its instants and carries the requested timezone", func(t *testing.T) {
		startTime := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		endTime := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

		start, end := toProviderTimes(startTime, endTime, false, "America/New_York", "Europe/Warsaw")

		assert.Equal(t, "2024-06-01T09:00:00Z", start.DateTime)
		assert.Equal(t, "2024-06-01T10:00:00Z", end.DateTime)
		assert.Equal(t, "America/New_York", start.TimeZone)
		assert.Equal(t, "America/New_York", end.TimeZone)
		assert.Empty(t, start.Date)
	})

	t.Run("timed event without a timezone falls back to the default", func(t *testing.T) {
		start, end := toProviderTimes(
			time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			false, "", "Europe/Warsaw")

		assert.Equal(t, "Europe/Warsaw", start.TimeZone)
		assert.Equal(t, "Europe/Warsaw", end.TimeZone)
	})
}

func TestFromProviderEvent(t *testing.T) {
	t.Run("all-day event maps to noon instants with the exclusive end pulled back", func(t *testing.T) {
		times, err := fromProviderEvent(&gcal.Event{
			Id:    "ev1",
			Start: &gcal.EventDateTime{Date: "2024-06-01"},
			End:   &gcal.EventDateTime{Date: "2024-06-02"},
		})

		require.NoError(t, err)
		assert.True(t, times.AllDay)
		assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), times.StartTime)
		assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), times.EndTime)
	})

	t.Run("round-trips a single-day all-day event without drifting", func(t *testing.T) {
		times, err := fromProviderEvent(&gcal.Event{
			Start: &gcal.EventDateTime{Date: "2024-06-01"},
			End:   &gcal.EventDateTime{Date: "2024-06-02"},
		})
		require.NoError(t, err)

		start, end := toProviderTimes(times.StartTime, times.EndTime, times.AllDay, "", "Europe/Warsaw")

		assert.Equal(t, "2024-06-01", start.Date)
		assert.Equal(t, "2024-06-02", end.Date)
	})

	t.Run("timed event parses both instants", func(t *testing.T) {
		times, err := fromProviderEvent(&gcal.Event{
			Start: &gcal.EventDateTime{DateTime: "2024-06-01T09:00:00+02:00"},
			End:   &gcal.EventDateTime{DateTime: "2024-06-01T10:00:00+02:00"},
		})

		require.NoError(t, err)
		assert.False(t, times.AllDay)
		assert.True(t, times.StartTime.Equal(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)))
		assert.True(t, times.EndTime.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects an event with missing bounds", func(t *testing.T) {
		_, err := fromProviderEvent(&gcal.Event{Id: "broken", Start: &gcal.EventDateTime{Date: "2024-06-01"}})
		assert.Error(t, err)
	})

	t.Run("rejects an unparseable start", func(t *testing.T) {
		_, err := fromProviderEvent(&gcal.Event{
			Start: &gcal.EventDateTime{DateTime: "yesterday"},
			End:   &gcal.EventDateTime{DateTime: "2024-06-01T10:00:00Z"},
		})
		assert.Error(t, err)
	})
}

func TestSanitizeEventId(t *testing.T) {
	assert.Equal(t, "req123abc", sanitizeEventId("Req-123-ABC!"))
	assert.Equal(t, "", sanitizeEventId("ab!"), "too short after stripping")
	assert.Equal(t, "", sanitizeEventId(""))
	assert.Equal(t, "a1b2c", sanitizeEventId("A1 B2 C"))
}
