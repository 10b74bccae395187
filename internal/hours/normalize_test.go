package hours

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// closed sentinel, case-insensitive exact match
		{"Closed", Closed},
		{"CLOSED", Closed},
		{"closed", Closed},
		{" Closed ", Closed},

		// 24-hour sentinel, case-insensitive substring match
		{"Open 24 hours", Open24},
		{"24 Hours", Open24},
		{"Open 24 hour", Open24},
		{"24/7-ish 24 hours", Open24},

		// unknown sentinel
		{"n/a", Unknown},
		{"N/A", Unknown},
		{"-", Unknown},

		// time ranges pass through trimmed but otherwise unchanged
		{"9:00 AM - 6:00 PM", "9:00 AM - 6:00 PM"},
		{" 8:30 AM - 5:00 PM ", "8:30 AM - 5:00 PM"},

		// empty stays empty (field omitted from the update)
		{"", ""},
		{"   ", ""},
	}

	for _, test := range tests {
		if got := Normalize(test.input); got != test.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestParseBoolFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"1", true},
		{" true ", true},
		{"false", false},
		{"0", false},
		{"yes", false},
		{"", false},
	}

	for _, test := range tests {
		if got := ParseBoolFlag(test.input); got != test.expected {
			t.Errorf("ParseBoolFlag(%q) = %v, expected %v", test.input, got, test.expected)
		}
	}
}
