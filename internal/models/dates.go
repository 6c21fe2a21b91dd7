package models

import "time"

// DateOf strips the clock from t, keeping t's calendar day
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from -> to
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// WeekStart returns the Monday of the week containing t
func WeekStart(t time.Time) time.Time {
	d := DateOf(t)
	// time.Weekday starts at Sunday = 0
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
