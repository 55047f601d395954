package effort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0 h"},
		{-1, "0 h"},
		{0.75, "45 min"},
		{1.0 / 60, "1 min"},
		{1, "1.0 h"},
		{2.25, "2.3 h"},
		{9.96, "10.0 h"},
		{10, "10 h"},
		{10.5, "11 h"},
		{123.4, "123 h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHours(tt.hours), "hours=%v", tt.hours)
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30", 30},
		{" 12.5 ", 12.5},
		{"12.5min", 12.5},
		{".5", 0.5},
		{"5.", 5},
		{"-3", -3},
		{"1e2", 100},
		{"1e", 1},
		{"", 0},
		{"abc", 0},
		{".", 0},
		{"-", 0},
		{"NaN", 0},
		{"Infinity", 0},
		{"1e400", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMinutes(tt.in), "in=%q", tt.in)
	}
}
