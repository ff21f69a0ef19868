package service

import "time"

// Expiry is the effective instant at which a session stops accepting work.
// Valid is false when neither the exam window nor a running clock bounds the
// session, meaning it never expires by time.
type Expiry struct {
	At    time.Time
	Valid bool
}

// ResolveExpiry computes a session's expiry instant from the exam window end
// and the session clock. Duration-based expiry only applies once the clock
// has started; the exam window is an outer bound regardless:
//
//   - no window end, no start: never expires
//   - window end only: expires at the window end
//   - both: the earlier of window end and startedAt + duration
func ResolveExpiry(scheduledEnd, startedAt *time.Time, durationMinutes int) Expiry {
	switch {
	case scheduledEnd == nil && startedAt == nil:
		return Expiry{}
	case scheduledEnd != nil && startedAt == nil:
		return Expiry{At: *scheduledEnd, Valid: true}
	case scheduledEnd == nil:
		return Expiry{At: startedAt.Add(time.Duration(durationMinutes) * time.Minute), Valid: true}
	}

	durationEnd := startedAt.Add(time.Duration(durationMinutes) * time.Minute)
	if scheduledEnd.Before(durationEnd) {
		return Expiry{At: *scheduledEnd, Valid: true}
	}
	return Expiry{At: durationEnd, Valid: true}
}

// Expired reports whether the session is past its expiry at the given time.
// A session with no expiry never expires.
func (e Expiry) Expired(now time.Time) bool {
	return e.Valid && !now.Before(e.At)
}

// MinutesRemaining derives whole minutes left until expiry, floored.
// ok is false when the expiry is undefined or already in the past.
func (e Expiry) MinutesRemaining(now time.Time) (minutes int, ok bool) {
	if !e.Valid || e.Expired(now) {
		return 0, false
	}
	return int(e.At.Sub(now) / time.Minute), true
}
