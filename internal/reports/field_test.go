package reports

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNormalizeCosts(t *testing.T) {
	ok := []struct {
		in   any
		want float64
	}{
		{"120.50", 120.5},
		{" 0 ", 0},
		{42, 42},
		{json.Number("9.99"), 9.99},
	}
	for _, tc := range ok {
		got, err := FieldTotalCost.Normalize(tc.in)
		if err != nil || got.(float64) != tc.want {
			t.Fatalf("Normalize(%v) = %v, %v", tc.in, got, err)
		}
	}

	for _, in := range []any{-50, "-0.01", "NaN", "Inf", "-Inf", math.NaN(), math.Inf(1)} {
		if _, err := FieldPartsCost.Normalize(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Normalize(%v) err = %v, want ErrInvalidAmount", in, err)
		}
	}
	if _, err := FieldTotalCost.Normalize("abc"); err == nil || errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("unparseable amount err = %v", err)
	}
	if _, err := PatchFor(FieldTotalCost, -1.0); err == nil {
		t.Fatalf("PatchFor accepted a negative cost")
	}
}

func TestNormalizeText(t *testing.T) {
	if v, err := FieldAdminNotes.Normalize(nil); err != nil || v != "" {
		t.Fatalf("nil text = %v, %v", v, err)
	}
	if _, err := FieldDescription.Normalize(12); err == nil {
		t.Fatalf("number accepted as text")
	}
}
