package money

import (
	"math"
	"testing"
)

func TestRound2HalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{2.675, 2.68},
		{2.674, 2.67},
		{0.005, 0.01},
		{100.0, 100.0},
		{81.0, 81.0},
		{19.999, 20.0},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRound2NonFinite(t *testing.T) {
	if got := Round2(math.NaN()); got != 0 {
		t.Fatalf("Round2(NaN) = %v, want 0", got)
	}
	if got := Round2(math.Inf(1)); got != 0 {
		t.Fatalf("Round2(+Inf) = %v, want 0", got)
	}
	if got := Round2(math.Inf(-1)); got != 0 {
		t.Fatalf("Round2(-Inf) = %v, want 0", got)
	}
}

func TestToNumber(t *testing.T) {
	if got := ToNumber("12.50"); got != 12.5 {
		t.Fatalf("ToNumber string = %v", got)
	}
	if got := ToNumber("not-a-price"); got != 0 {
		t.Fatalf("ToNumber junk = %v, want 0", got)
	}
	if got := ToNumber(math.NaN()); got != 0 {
		t.Fatalf("ToNumber NaN = %v, want 0", got)
	}
	if got := ToNumber(nil); got != 0 {
		t.Fatalf("ToNumber nil = %v, want 0", got)
	}
	if got := ToNumber(int64(7)); got != 7 {
		t.Fatalf("ToNumber int64 = %v", got)
	}
}
