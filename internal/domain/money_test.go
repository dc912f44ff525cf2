package domain

import "testing"

func TestNairaToKobo_RoundsToNearestKobo(t *testing.T) {
	cases := []struct {
		naira float64
		kobo  int64
	}{
		{5000, 500_000},
		{0.01, 1},
		{1250.505, 125_051},
		{1250.504, 125_050},
		{0, 0},
	}
	for _, c := range cases {
		if got := NairaToKobo(c.naira); got != c.kobo {
			t.Errorf("NairaToKobo(%v) = %d, want %d", c.naira, got, c.kobo)
		}
	}
}

func TestKoboToNaira_RoundTrips(t *testing.T) {
	if got := KoboToNaira(500_000); got != 5000 {
		t.Fatalf("KoboToNaira(500000) = %v, want 5000", got)
	}
}

func TestFormatNaira(t *testing.T) {
	cases := []struct {
		naira float64
		want  string
	}{
		{5000, "₦5,000"},
		{1250.50, "₦1,250.50"},
		{999, "₦999"},
		{1_000_000, "₦1,000,000"},
		{0, "₦0"},
		{-250.25, "-₦250.25"},
	}
	for _, c := range cases {
		if got := FormatNaira(c.naira); got != c.want {
			t.Errorf("FormatNaira(%v) = %q, want %q", c.naira, got, c.want)
		}
	}
}
