package utils

import "testing"

func TestOptionalInt(t *testing.T) {
	if v, err := OptionalInt(""); err != nil || v != nil {
		t.Errorf("expected nil for empty input, got %v %v", v, err)
	}
	if v, err := OptionalInt(" 2024 "); err != nil || v == nil || *v != 2024 {
		t.Errorf("expected 2024, got %v %v", v, err)
	}
	if _, err := OptionalInt("twenty"); err == nil {
		t.Errorf("expected error for non-numeric input")
	}
}

func TestIsTruthy(t *testing.T) {
	for _, s := range []string{"true", "1", "TRUE", " t "} {
		if !IsTruthy(s) {
			t.Errorf("expected %q to be truthy", s)
		}
	}
	for _, s := range []string{"", "false", "yes", "0"} {
		if IsTruthy(s) {
			t.Errorf("expected %q to be falsy", s)
		}
	}
}
