package shell

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errNotInteger  = errors.New("not an integer")
	errNotNumber   = errors.New("not a number")
	errNotPositive = errors.New("must be greater than zero")
)

// parseInt accepts an optionally signed run of digits and nothing else, so
// "2.5" and "3pages" are rejected instead of truncated.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if digits == "" || len(s)-len(digits) > 1 {
		return 0, errNotInteger
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, errNotInteger
		}
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errNotInteger
	}
	return int(v), nil
}

func parsePositiveInt(s string) (int, error) {
	v, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errNotPositive
	}
	return v, nil
}

func parsePositiveFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errNotNumber
	}
	if v <= 0 {
		return 0, errNotPositive
	}
	return v, nil
}

// formatClock renders seconds as mm:ss, or "-" for an unset time.
func formatClock(sec int) string {
	if sec < 0 {
		return "-"
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
