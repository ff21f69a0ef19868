package service

import (
	"testing"
	"time"
)

func TestResolveExpiry(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	windowEnd := base.Add(2 * time.Hour)

	tests := []struct {
		name         string
		scheduledEnd *time.Time
		startedAt    *time.Time
		duration     int
		wantValid    bool
		wantAt       time.Time
	}{
		{
			name:      "no window and not started never expires",
			duration:  60,
			wantValid: false,
		},
		{
			name:         "window end only bounds an unstarted session",
			scheduledEnd: &windowEnd,
			duration:     60,
			wantValid:    true,
			wantAt:       windowEnd,
		},
		{
			name:      "started without a window expires by duration",
			startedAt: &base,
			duration:  90,
			wantValid: true,
			wantAt:    base.Add(90 * time.Minute),
		},
		{
			name:         "duration elapses before window end",
			scheduledEnd: &windowEnd,
			startedAt:    &base,
			duration:     60,
			wantValid:    true,
			wantAt:       base.Add(60 * time.Minute),
		},
		{
			name:         "window end arrives before duration elapses",
			scheduledEnd: &windowEnd,
			startedAt:    &base,
			duration:     180,
			wantValid:    true,
			wantAt:       windowEnd,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveExpiry(tc.scheduledEnd, tc.startedAt, tc.duration)
			if got.Valid != tc.wantValid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tc.wantValid)
			}
			if got.Valid && !got.At.Equal(tc.wantAt) {
				t.Errorf("At = %v, want %v", got.At, tc.wantAt)
			}
		})
	}
}

func TestExpiryExpired(t *testing.T) {
	at := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	if (Expiry{}).Expired(at) {
		t.Error("session without expiry reported expired")
	}
	if (Expiry{At: at, Valid: true}).Expired(at.Add(-time.Second)) {
		t.Error("expired before the expiry instant")
	}
	if !(Expiry{At: at, Valid: true}).Expired(at) {
		t.Error("not expired at the expiry instant")
	}
	if !(Expiry{At: at, Valid: true}).Expired(at.Add(time.Minute)) {
		t.Error("not expired after the expiry instant")
	}
}

func TestMinutesRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expiry  Expiry
		wantMin int
		wantOK  bool
	}{
		{name: "undefined expiry", expiry: Expiry{}, wantOK: false},
		{name: "already expired", expiry: Expiry{At: now.Add(-time.Minute), Valid: true}, wantOK: false},
		{name: "whole minutes", expiry: Expiry{At: now.Add(45 * time.Minute), Valid: true}, wantMin: 45, wantOK: true},
		{name: "floors partial minutes", expiry: Expiry{At: now.Add(45*time.Minute + 59*time.Second), Valid: true}, wantMin: 45, wantOK: true},
		{name: "under one minute floors to zero", expiry: Expiry{At: now.Add(30 * time.Second), Valid: true}, wantMin: 0, wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			min, ok := tc.expiry.MinutesRemaining(now)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && min != tc.wantMin {
				t.Errorf("minutes = %d, want %d", min, tc.wantMin)
			}
		})
	}
}
