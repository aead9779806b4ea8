package frequency

import (
	"errors"
	"testing"
)

func TestDays(t *testing.T) {
	tests := []struct {
		freq    string
		horizon int
		want    int
	}{
		{"s", 172800, 2},
		{"s", 86399, 0},
		{"H", 48, 2},
		{"H", 23, 0},
		{"D", 10, 10},
		{"W", 2, 14},
		{"M", 3, 90},
		{"Q", 2, 180},
		{"Y", 1, 365},
		{"15s", 172800, 2},
		{"3H", 48, 2},
	}
	for _, tt := range tests {
		got, err := Days(tt.freq, tt.horizon)
		if err != nil {
			t.Fatalf("Days(%q, %d): %v", tt.freq, tt.horizon, err)
		}
		if got != tt.want {
			t.Fatalf("Days(%q, %d) = %d, want %d", tt.freq, tt.horizon, got, tt.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		freq    string
		horizon int
		want    int
	}{
		{"s", 90, 90},
		{"H", 2, 7200},
		{"D", 1, 86400},
		{"W", 1, 604800},
		{"M", 1, 2592000},
		{"Q", 1, 7776000},
		{"Y", 1, 31536000},
	}
	for _, tt := range tests {
		got, err := Seconds(tt.freq, tt.horizon)
		if err != nil {
			t.Fatalf("Seconds(%q, %d): %v", tt.freq, tt.horizon, err)
		}
		if got != tt.want {
			t.Fatalf("Seconds(%q, %d) = %d, want %d", tt.freq, tt.horizon, got, tt.want)
		}
	}
}

func TestSubDaily(t *testing.T) {
	for _, freq := range []string{"s", "30s", "H", "6H"} {
		sub, err := SubDaily(freq)
		if err != nil {
			t.Fatalf("SubDaily(%q): %v", freq, err)
		}
		if !sub {
			t.Fatalf("expected %q to be sub-daily", freq)
		}
	}
	for _, freq := range []string{"D", "W", "M", "Q", "Y"} {
		sub, err := SubDaily(freq)
		if err != nil {
			t.Fatalf("SubDaily(%q): %v", freq, err)
		}
		if sub {
			t.Fatalf("expected %q not to be sub-daily", freq)
		}
	}
}

func TestUnknownCode(t *testing.T) {
	if _, err := Days("", 1); !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("expected ErrUnknownCode for empty string, got %v", err)
	}
	if _, err := Seconds("X", 1); !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("expected ErrUnknownCode for X, got %v", err)
	}
	if _, err := SubDaily("min"); !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("expected ErrUnknownCode for min, got %v", err)
	}
}
