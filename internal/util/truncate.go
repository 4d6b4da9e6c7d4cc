package util

import "fmt"

// DefaultLogMaxLen caps payload excerpts in verbose logs (1KB).
const DefaultLogMaxLen = 1024

// TruncateLog shortens long strings for log output so verbose API tracing
// does not balloon the log file.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes is a convenience wrapper for TruncateLog that accepts []byte
// and uses DefaultLogMaxLen.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}
