// Package model contains the typed records decoded from report datasets.
package model

import "time"

// Observation is a single dated headcount sample.
type Observation struct {
	Date  time.Time `json:"date" validate:"required"`
	Count float64   `json:"count" validate:"gte=0"`
}

// Activity is one row of the chat/voice activity table.
type Activity struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Score    float64 `json:"score" validate:"gte=0"`
}

// Event is a community event; Participants is zero when the source omits it.
type Event struct {
	Name         string `json:"name" validate:"required"`
	Period       string `json:"period"`
	Participants int    `json:"participants" validate:"gte=0"`
}

// Staff is one member of the staff roster.
type Staff struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	Rank       string `json:"rank"`
}

// Match is one scrimmage record. Winner may be blank for unfinished matches.
type Match struct {
	Date         time.Time `json:"date" validate:"required"`
	Game         string    `json:"game"`
	Participants int       `json:"participants" validate:"gte=0"`
	Winner       string    `json:"winner"`
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from a to b, negative when b is earlier.
// It works on Unix seconds rather than time.Duration, which overflows past
// roughly 292 years.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / secondsPerDay)
}
