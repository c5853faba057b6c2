package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, -1, 1, -1},
		{"above", 3, -1, 1, 1},
		{"swapped bounds", 3, 1, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestDBConversionsRoundTrip(t *testing.T) {
	t.Parallel()

	for _, db := range []float64{-60, -6, 0, 6, 24} {
		got := LinearToDB(DBToLinear(db))
		if math.Abs(got-db) > 1e-9 {
			t.Fatalf("round trip %v dB = %v", db, got)
		}
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("LinearToDB(0) should be -Inf")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("LinearToDB(-1) should be NaN")
	}
}

func TestValidateRange(t *testing.T) {
	t.Parallel()

	if err := ValidateRange("gain", "db", 3, -10, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, v := range []float64{-11, 11, math.NaN(), math.Inf(1)} {
		if err := ValidateRange("gain", "db", v, -10, 10); err == nil {
			t.Fatalf("expected error for %v", v)
		}
	}
}

func TestValidateSampleRate(t *testing.T) {
	t.Parallel()

	if err := ValidateSampleRate("delay", 48000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := ValidateSampleRate("delay", sr); err == nil {
			t.Fatalf("expected error for %v", sr)
		}
	}
}

func TestMsToCoeff(t *testing.T) {
	t.Parallel()

	if got := MsToCoeff(0, 48000); got != 0 {
		t.Fatalf("MsToCoeff(0) = %v, want 0", got)
	}

	c := MsToCoeff(10, 48000)
	if c <= 0 || c >= 1 {
		t.Fatalf("MsToCoeff(10) = %v, want (0,1)", c)
	}

	if FlushDenormals(1e-35) != 0 || FlushDenormals(0.5) != 0.5 {
		t.Fatal("FlushDenormals mismatch")
	}
}
