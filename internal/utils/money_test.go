package utils

import "testing"

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{45, "R$ 45,00"},
		{110.5, "R$ 110,50"},
		{1234.5, "R$ 1.234,50"},
		{0, "R$ 0,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(tc.in); got != tc.want {
			t.Fatalf("FormatBRL(%v) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(50); got != "50%" {
		t.Fatalf("FormatPercent(50) = %q", got)
	}
	if got := FormatPercent(12.4); got != "12%" {
		t.Fatalf("FormatPercent(12.4) = %q", got)
	}
}
