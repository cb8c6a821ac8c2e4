package model

import "time"

// Reminder is a local notification request fired once at At.
type Reminder struct {
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
}
