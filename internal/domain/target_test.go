package domain

import (
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	for _, want := range AllTargets() {
		got, err := ParseTarget(string(want))
		if err != nil || got != want {
			t.Fatalf("ParseTarget(%q) = %q, %v", want, got, err)
		}
		if !got.Valid() {
			t.Fatalf("%s reported invalid", got)
		}
	}

	for _, raw := range []string{"", "harbor", "Grid", "oilrig"} {
		_, err := ParseTarget(raw)
		if !errors.Is(err, ErrUnknownTarget) {
			t.Fatalf("ParseTarget(%q) err = %v, want ErrUnknownTarget", raw, err)
		}
		if Target(raw).Valid() {
			t.Fatalf("%q reported valid", raw)
		}
	}
}

func TestTargetFlagLiterals(t *testing.T) {
	tests := []struct {
		target  Target
		flag    string
		literal string
	}{
		{TargetGrid, "gridBreach", TriggerValue},
		{TargetAirport, "airportBreach", TrueValue},
		{TargetTrain, "trainBreach", TrueValue},
		{TargetOilRig, "oilRigBreach", TrueValue},
	}
	for _, tt := range tests {
		if got := tt.target.FlagName(); got != tt.flag {
			t.Fatalf("%s FlagName = %q, want %q", tt.target, got, tt.flag)
		}
		if got := tt.target.TriggerLiteral(); got != tt.literal {
			t.Fatalf("%s TriggerLiteral = %q, want %q", tt.target, got, tt.literal)
		}
		if !IsTrigger(tt.target.TriggerLiteral()) {
			t.Fatalf("%s literal not recognised as trigger", tt.target)
		}
	}
	if IsTrigger("yes") || IsTrigger("") {
		t.Fatalf("unexpected trigger literal accepted")
	}
}
