package survey

import (
	"encoding/json"
	"strings"
)

// Severity rates an observation. The zero value means the input did
// not carry a recognisable rating.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityUnknown:  "Unknown",
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ParseSeverity maps a severity label to its rank, case-insensitively.
// Unrecognised labels come back as SeverityUnknown with ok = false.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, true
	case "medium":
		return SeverityMedium, true
	case "high":
		return SeverityHigh, true
	case "critical":
		return SeverityCritical, true
	}
	return SeverityUnknown, false
}

// UnmarshalJSON is lenient: a malformed or unknown rating decodes to
// SeverityUnknown rather than failing the whole collection.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = SeverityUnknown
		return nil
	}
	*s, _ = ParseSeverity(raw)
	return nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
