package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatReceiptNo(t *testing.T) {
	loc := LoadTimezone(DefaultTimezone)
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, loc)

	cases := []struct {
		seq  int64
		want string
	}{
		{1, "INV-20260830-0001"},
		{42, "INV-20260830-0042"},
		{9999, "INV-20260830-9999"},
		{10000, "INV-20260830-10000"},
	}
	for _, c := range cases {
		if got := FormatReceiptNo(day, c.seq); got != c.want {
			t.Errorf("FormatReceiptNo(seq=%d): got %q, want %q", c.seq, got, c.want)
		}
	}
}

func TestPercentageChange(t *testing.T) {
	cases := []struct {
		current  int64
		previous int64
		want     string
	}{
		{150, 100, "50"},
		{50, 100, "-50"},
		{100, 100, "0"},
		// zero previous period reports full growth
		{75, 0, "100"},
		{0, 0, "100"},
	}
	for _, c := range cases {
		got := PercentageChangeInt(c.current, c.previous)
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("PercentageChangeInt(%d, %d): got %s, want %s", c.current, c.previous, got, c.want)
		}
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	loc := LoadTimezone("Asia/Jakarta")
	// 2026-01-15 01:30 UTC is already 08:30 on the 15th in Jakarta (UTC+7)
	instant := time.Date(2026, 1, 15, 1, 30, 0, 0, time.UTC)

	start := StartOfDay(instant, loc)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("StartOfDay is not midnight: %v", start)
	}
	if start.Day() != 15 {
		t.Fatalf("StartOfDay landed on the wrong local day: %v", start)
	}

	end := EndOfDay(instant, loc)
	if end.Day() != 15 || end.Hour() != 23 {
		t.Fatalf("EndOfDay landed outside the local day: %v", end)
	}
	if !end.Before(start.AddDate(0, 0, 1)) {
		t.Fatalf("EndOfDay %v should precede next midnight", end)
	}
}

func TestLoadTimezoneFallback(t *testing.T) {
	if got := LoadTimezone("Not/AZone"); got != time.UTC {
		t.Errorf("unknown timezone should fall back to UTC, got %v", got)
	}
	if got := LoadTimezone(""); got.String() != DefaultTimezone {
		t.Errorf("empty timezone should resolve to %s, got %v", DefaultTimezone, got)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"ibu.siti@warung.co.id", "a@b.io"}
	invalid := []string{"", "not-an-email", "a@b", "@warung.id"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v (first occurrence order must be kept)", got, want)
		}
	}
}
