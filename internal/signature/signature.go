// Package signature verifies HMAC signatures on inbound webhook requests.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedHeader is returned when a signature header cannot be parsed.
	ErrMalformedHeader = errors.New("malformed signature header")
	// ErrReplayWindowExceeded is returned when the timestamp is outside the replay window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
)

// DefaultReplayWindow is the default replay protection window for timestamped signatures.
const DefaultReplayWindow = 5 * time.Minute

// ComputeHMAC returns the hex-encoded HMAC-SHA256 digest of body under secret.
func ComputeHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC checks a plain hex-encoded HMAC-SHA256 signature over the raw body.
// Calendly sends its signature in this form.
func VerifyHMAC(secret, signature string, body []byte) error {
	expected := ComputeHMAC(secret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// TimestampedSignature is a parsed "t=...,v1=..." signature header.
type TimestampedSignature struct {
	Timestamp int64
	Digest    string
}

// ParseTimestamped parses a Stripe-style signature header of the form
// "t=1736600000,v1=abcdef...". Unknown elements are ignored.
func ParseTimestamped(header string) (*TimestampedSignature, error) {
	var sig TimestampedSignature
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, ErrMalformedHeader
			}
			sig.Timestamp = ts
		case "v1":
			sig.Digest = value
		}
	}
	if sig.Timestamp == 0 || sig.Digest == "" {
		return nil, ErrMalformedHeader
	}
	return &sig, nil
}

// VerifyTimestamped validates a Stripe-style signature header with replay protection.
// The signed canonical string is "{timestamp}.{body}".
func VerifyTimestamped(secret, header string, body []byte, replayWindow time.Duration) error {
	sig, err := ParseTimestamped(header)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	if abs(now-sig.Timestamp) > int64(replayWindow.Seconds()) {
		return ErrReplayWindowExceeded
	}

	canonical := strconv.FormatInt(sig.Timestamp, 10) + "." + string(body)
	expected := ComputeHMAC(secret, []byte(canonical))
	if !hmac.Equal([]byte(expected), []byte(sig.Digest)) {
		return ErrInvalidSignature
	}
	return nil
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
