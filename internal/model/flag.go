package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flag marks an expense as good (positive) or avoidable (negative) spending.
type Flag int

const (
	// FlagUnset means the expense has not been judged.
	FlagUnset Flag = iota
	// FlagPositive marks spending worth praising.
	FlagPositive
	// FlagNegative marks avoidable spending.
	FlagNegative
)

// Wire values used by the backend.
const (
	wireFlagPositive = "green"
	wireFlagNegative = "red"
)

func (f Flag) String() string {
	switch f {
	case FlagPositive:
		return "positive"
	case FlagNegative:
		return "negative"
	default:
		return "unset"
	}
}

// Settable reports whether f can be sent to the flag endpoint.
func (f Flag) Settable() bool {
	return f == FlagPositive || f == FlagNegative
}

// ParseFlag accepts both the display names and the backend colour names.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset", "none":
		return FlagUnset, nil
	case "positive", "good", wireFlagPositive:
		return FlagPositive, nil
	case "negative", "bad", "avoidable", wireFlagNegative:
		return FlagNegative, nil
	}
	return FlagUnset, fmt.Errorf("unknown flag %q", s)
}

// MarshalJSON encodes the flag as the backend expects: null, "green" or "red".
func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagPositive:
		return json.Marshal(wireFlagPositive)
	case FlagNegative:
		return json.Marshal(wireFlagNegative)
	case FlagUnset:
		return []byte("null"), nil
	}
	return nil, fmt.Errorf("invalid flag value %d", int(f))
}

// UnmarshalJSON decodes null, "green" or "red".
func (f *Flag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = FlagUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag must be a string or null: %w", err)
	}
	switch s {
	case wireFlagPositive:
		*f = FlagPositive
	case wireFlagNegative:
		*f = FlagNegative
	case "":
		*f = FlagUnset
	default:
		return fmt.Errorf("unknown flag %q", s)
	}
	return nil
}
