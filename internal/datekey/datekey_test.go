package datekey

import (
	"testing"
	"time"
)

func TestEncodeIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, 10, 20, 8, 15, 0, 0, time.Local)
	night := time.Date(2025, 10, 20, 23, 59, 59, 0, time.Local)
	if Encode(morning) != Encode(night) {
		t.Fatalf("expected same key, got %q and %q", Encode(morning), Encode(night))
	}
	if Encode(morning) != "2025-10-20" {
		t.Fatalf("unexpected key: %q", Encode(morning))
	}
}

func TestRoundTrip(t *testing.T) {
	original := time.Date(2025, 3, 7, 17, 30, 0, 0, time.Local)
	key := Encode(original)
	decoded, ok := Decode(key)
	if !ok {
		t.Fatalf("Decode(%q) failed", key)
	}
	if Encode(decoded) != key {
		t.Fatalf("round trip changed key: %q -> %q", key, Encode(decoded))
	}
	if decoded.Hour() != 0 || decoded.Minute() != 0 {
		t.Fatalf("expected local midnight, got %v", decoded)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, key := range []string{"", "not-a-date", "2025-13-40", "2025/10/20", "20251020"} {
		if _, ok := Decode(key); ok {
			t.Fatalf("expected Decode(%q) to fail", key)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 10, 20, 1, 0, 0, 0, time.Local)
	b := time.Date(2025, 10, 20, 22, 0, 0, 0, time.Local)
	c := time.Date(2025, 10, 21, 0, 0, 0, 0, time.Local)
	if !SameDay(a, b) {
		t.Fatalf("expected %v and %v to be the same day", a, b)
	}
	if SameDay(a, c) {
		t.Fatalf("expected %v and %v to differ", a, c)
	}
}

func TestMidnight(t *testing.T) {
	tm := time.Date(2025, 10, 20, 18, 45, 12, 99, time.Local)
	got := Midnight(tm)
	want := time.Date(2025, 10, 20, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
