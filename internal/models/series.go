// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Point is one observation of a daily series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a chronologically ordered daily series.
type Series []Point

// Values returns the series values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point. The series must not be empty.
func (s Series) Last() Point {
	return s[len(s)-1]
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a range ending on end (inclusive) spanning days days.
func NewDateRange(end time.Time, days int) DateRange {
	end = Day(end)
	return DateRange{Start: end.AddDate(0, 0, -(days - 1)), End: end}
}

// Validate checks that the range is non-empty.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range requires start and end")
	}
	if Day(r.End).Before(Day(r.Start)) {
		return fmt.Errorf("date range end %s is before start %s",
			r.End.Format(DayLayout), r.Start.Format(DayLayout))
	}
	return nil
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	return int(Day(r.End).Sub(Day(r.Start)).Hours()/24) + 1
}

// Contains reports whether day t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Widen returns the union of r and the trailing window of days days ending at r.End.
func (r DateRange) Widen(days int) DateRange {
	trailing := NewDateRange(r.End, days)
	if trailing.Start.Before(Day(r.Start)) {
		return DateRange{Start: trailing.Start, End: Day(r.End)}
	}
	return DateRange{Start: Day(r.Start), End: Day(r.End)}
}
