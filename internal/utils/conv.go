package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns the fallback on error.
func StringToInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

// StringToFloat converts string to *float64, returns nil on empty or error.
func StringToFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
