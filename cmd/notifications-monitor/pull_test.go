package main

import (
	"testing"
	"time"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("", 10*time.Minute, now)
	if err != nil || !got.Equal(now.Add(-10*time.Minute)) {
		t.Errorf("lookback: got %v, %v", got, err)
	}

	got, err = parseSince("2024-05-31T08:00:00Z", 0, now)
	if err != nil || !got.Equal(time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("rfc3339: got %v, %v", got, err)
	}

	got, err = parseSince("2024-05-31", 0, now)
	if err != nil || !got.Equal(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date: got %v, %v", got, err)
	}

	if _, err := parseSince("yesterday", 0, now); err == nil {
		t.Error("expected error for invalid since")
	}
}
