package ingest

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
)

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2025-05-15")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if got := day.String(); got != "2025-05-15" {
		t.Errorf("expected 2025-05-15, got %q", got)
	}

	for _, bad := range []string{"", "2025-5-1", "15-05-2025", "not a date"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDayNextAndAfter(t *testing.T) {
	day, _ := ParseDay("2025-05-31")
	next := day.Next()
	if got := next.String(); got != "2025-06-01" {
		t.Errorf("expected month rollover to 2025-06-01, got %q", got)
	}
	if !next.After(day) {
		t.Error("next day should be after its predecessor")
	}
	if day.After(next) {
		t.Error("day should not be after its successor")
	}
}

func TestDayJSONRoundTrip(t *testing.T) {
	day, _ := ParseDay("2025-05-15")
	data, err := json.Marshal(day)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"2025-05-15"` {
		t.Errorf("unexpected JSON: %s", data)
	}
	var decoded Day
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.String() != day.String() {
		t.Errorf("round trip mismatch: %s != %s", decoded, day)
	}
}

func TestDaysBetween(t *testing.T) {
	start, _ := ParseDay("2025-05-01")
	end, _ := ParseDay("2025-05-03")
	days, err := DaysBetween(start, end)
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	want := []string{"2025-05-01", "2025-05-02", "2025-05-03"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, w := range want {
		if days[i].String() != w {
			t.Errorf("day %d: expected %s, got %s", i, w, days[i])
		}
	}
}

func TestDaysBetweenSingleDay(t *testing.T) {
	day, _ := ParseDay("2025-05-01")
	days, err := DaysBetween(day, day)
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
}

func TestDaysBetweenInvalidRange(t *testing.T) {
	start, _ := ParseDay("2025-05-10")
	end, _ := ParseDay("2025-05-01")
	if _, err := DaysBetween(start, end); !errors.Is(err, apperrors.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}
