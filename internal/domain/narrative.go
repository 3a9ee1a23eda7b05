package domain

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// queryDateLayout renders window boundaries, e.g. "June 01, 2021".
	queryDateLayout = "January 02, 2006"
	// eventDateLayout renders the winning event's date, e.g. "June 05".
	eventDateLayout = "January 02"
)

// FoundNarrative builds the summary line for a lookup that produced a winner.
// The place label is whatever reverse geocoding yielded, possibly
// UnknownLocation. Magnitude precision passes through from the catalog.
func FoundNarrative(q ProximityQuery, ev SeismicEvent, placeLabel string) string {
	city := q.DisplayName()
	return fmt.Sprintf("Result for %s between %s and %s: The closest earthquake to %s was an M %s - %s on %s",
		city,
		q.StartDate.Format(queryDateLayout),
		q.EndDate.Format(queryDateLayout),
		city,
		formatMagnitude(ev.Magnitude),
		placeLabel,
		ev.OccurredAt.UTC().Format(eventDateLayout),
	)
}

// NotFoundNarrative builds the summary line for a window with no qualifying
// events.
func NotFoundNarrative(q ProximityQuery) string {
	return fmt.Sprintf("No results found for %s between %s and %s.",
		q.DisplayName(),
		q.StartDate.Format(queryDateLayout),
		q.EndDate.Format(queryDateLayout),
	)
}

// formatMagnitude renders a magnitude without imposing precision:
// 5.25 -> "5.25", 6 -> "6".
func formatMagnitude(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// ParseQueryDate parses a YYYY-MM-DD calendar date into a UTC time.
func ParseQueryDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
