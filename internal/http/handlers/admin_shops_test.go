package handlers

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Maple Tire & Auto", "maple-tire-auto"},
		{"Bob's \"Best\" Tires, Inc.", "bob-s-best-tires-inc"},
		{"  Trailing  Spaces  ", "trailing-spaces"},
		{"already-slugged", "already-slugged"},
		{"ALL CAPS SHOP", "all-caps-shop"},
		{"24/7 Tire Dépôt", "24-7-tire-d-p-t"},
	}

	for _, test := range tests {
		result := slugify(test.input)
		if result != test.expected {
			t.Errorf("slugify(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}
