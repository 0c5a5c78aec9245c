package model

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a suffix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New() // Generate a new UUID.
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr) // Append the module as a suffix to the UUID.
	return idWithSuffix
}

var (
	// canonicalIDPattern matches the ledger's prefixed opaque ids,
	// e.g. "account_9d3b...".
	canonicalIDPattern = regexp.MustCompile(`^[a-z]+_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// legacyIDPattern matches the secondary 24-hex identifier some endpoints
	// still emit alongside the canonical id.
	legacyIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)
)

// IsOpaqueID reports whether a string has one of the ledger's identifier
// shapes. Reference resolution only substitutes cached objects for fields
// that look like identifiers; anything else is left untouched.
func IsOpaqueID(s string) bool {
	return canonicalIDPattern.MatchString(s) || legacyIDPattern.MatchString(s)
}
