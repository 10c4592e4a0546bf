// Package model defines domain entities for the application.
package model

import "time"

// Video is the tracked-campaign record for a published video.
// It is created lazily on first click (or alongside a Link) and its
// engagement counters are overwritten by the periodic stats refresh.
type Video struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	AvgWatchTime float64   `json:"avg_watch_time"` // seconds
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VideoStats carries a stats snapshot from the video platform.
// Applied to a Video with last-writer-wins semantics.
type VideoStats struct {
	Views        int64   `json:"views"`
	Likes        int64   `json:"likes"`
	Comments     int64   `json:"comments"`
	AvgWatchTime float64 `json:"avg_watch_time"`
}
