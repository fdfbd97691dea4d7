package shell

import (
	"errors"
	"testing"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 7 ", 7, false},
		{"-3", -3, false},
		{"+5", 5, false},
		{"0", 0, false},
		{"", 0, true},
		{"-", 0, true},
		{"--1", 0, true},
		{"2.5", 0, true},
		{"3pages", 0, true},
		{"1e3", 0, true},
		{"99999999999", 0, true},
	}
	for _, tt := range tests {
		got, err := parseInt(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseInt(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	if v, err := parsePositiveInt("12"); err != nil || v != 12 {
		t.Errorf("expected 12, got %d, %v", v, err)
	}
	if _, err := parsePositiveInt("0"); !errors.Is(err, errNotPositive) {
		t.Errorf("expected errNotPositive, got %v", err)
	}
	if _, err := parsePositiveInt("1.5"); !errors.Is(err, errNotInteger) {
		t.Errorf("expected errNotInteger, got %v", err)
	}
}

func TestParsePositiveFloat(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr error
	}{
		{"0.7", 0.7, nil},
		{" 2 ", 2, nil},
		{"0", 0, errNotPositive},
		{"-1.5", 0, errNotPositive},
		{"abc", 0, errNotNumber},
		{"NaN", 0, errNotNumber},
		{"Inf", 0, errNotNumber},
	}
	for _, tt := range tests {
		got, err := parsePositiveFloat(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("parsePositiveFloat(%q): expected error %v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePositiveFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[int]string{
		-1:   "-",
		0:    "00:00",
		59:   "00:59",
		61:   "01:01",
		3600: "60:00",
	}
	for sec, want := range tests {
		if got := formatClock(sec); got != want {
			t.Errorf("formatClock(%d) = %q, want %q", sec, got, want)
		}
	}
}
