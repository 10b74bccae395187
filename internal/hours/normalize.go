package hours

import "strings"

// Canonical day values. After normalization every non-empty day field is a
// time range string, or one of these three sentinels.
const (
	Closed  = "Closed"
	Open24  = "Open 24 hours"
	Unknown = "N/A"
)

// Days lists the recognized day columns in Monday..Sunday order
var Days = [7]string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// Normalize converts a raw day cell into its canonical form. An empty cell
// stays empty, which callers treat as "leave the stored value untouched".
func Normalize(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	lower := strings.ToLower(value)
	switch {
	case lower == "closed":
		return Closed
	case strings.Contains(lower, "24 hour"):
		return Open24
	case lower == "n/a" || value == "-":
		return Unknown
	}

	// Assumed to be a time range ("9:00 AM - 6:00 PM"); passed through as-is
	return value
}

// ParseBoolFlag parses the is_24_hours cell: truthy on case-insensitive
// "true" or literal "1", false otherwise.
func ParseBoolFlag(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	return value == "true" || value == "1"
}
