package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a standardized, human-readable optimizer run ID.
// Format: {operation}-{8charHexUUID}
//
// Example:
//   - Input: operation="run"
//   - Output: "run-a3f8e2b1"
//
// The generated IDs are short enough for log lines and file names while
// staying globally unique via the UUID suffix.
func GenerateRunID(operation string) string {
	return operation + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID.
// This provides sufficient uniqueness while keeping IDs compact.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
