package store

import "strings"

// validateKey enforces the two invariants the WAL grammar imposes on
// every key (spec.md §3): it must not contain the delimiter substring or
// an embedded newline, and — for records with a value serialized on the
// same line (Add) — it must not contain a space, since the first space
// after the delimiter is what separates key from value.
func validateKey(key string, forAdd bool) error {
	if key == "" {
		return &ValidationError{Reason: "key must not be empty"}
	}
	if strings.Contains(key, " == ") {
		return &ValidationError{Reason: "key must not contain the WAL delimiter \" == \""}
	}
	if strings.ContainsAny(key, "\n\r") {
		return &ValidationError{Reason: "key must not contain a newline"}
	}
	if forAdd && strings.Contains(key, " ") {
		return &ValidationError{Reason: "key must not contain a space"}
	}
	return nil
}

func validateValue(value string) error {
	if value == "" {
		return &ValidationError{Reason: "value must not be empty"}
	}
	return nil
}
