// Package model defines domain entities for the application.
package model

import "time"

// Click records a single redirect hit for a video. Append-only.
type Click struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Booking records a scheduled call reported by the scheduling
// provider. ClickID is empty when attribution failed; the row is kept
// for review instead of being dropped.
type Booking struct {
	ID          string    `json:"id"`
	ClickID     string    `json:"click_id,omitempty"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	NeedsReview bool      `json:"needs_review,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Attributed reports whether the booking is linked to a click.
func (b *Booking) Attributed() bool {
	return b.ClickID != ""
}

// Sale records a completed payment reported by the payment provider.
// Amount is in major currency units.
type Sale struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// AttributionChain is the fully resolved Video←Click←Booking←Sale
// lineage for a sale. All four legs are present or the chain does not
// resolve at all.
type AttributionChain struct {
	Sale    *Sale    `json:"sale"`
	Booking *Booking `json:"booking"`
	Click   *Click   `json:"click"`
	Video   *Video   `json:"video"`
}
