// Package notion provides a wrapper around the Notion API client
// with rate limiting, parallel fetching, and ID parsing utilities.
package notion

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// hexIDPattern matches a 32-character hex string.
var hexIDPattern = regexp.MustCompile(`[a-f0-9]{32}`)

// NormalizeID extracts a page or database ID from a Notion share URL or a
// raw ID and returns it formatted as UUID (8-4-4-4-12).
//
// Supported inputs:
//   - https://www.notion.so/{workspace}/{title}-{id}
//   - https://www.notion.so/{workspace}/{id}?v={view_id}
//   - https://www.notion.so/{id}
//   - {id} (raw 32-char hex or UUID)
//
// Configuration values for database IDs are passed through this so users
// can paste share links directly.
func NormalizeID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty Notion ID")
	}

	// Raw ID (32-char hex or UUID format) short-circuits URL parsing.
	if rawID := extractRawID(input); rawID != "" {
		return formatAsUUID(rawID), nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid Notion URL: %w", err)
	}

	// Search path segments back-to-front; the ID is the last one in
	// title-slug URLs.
	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if rawID := extractRawID(segments[i]); rawID != "" {
			return formatAsUUID(rawID), nil
		}
	}

	return "", fmt.Errorf("no valid Notion ID found in %q", input)
}

// IsNotionID reports whether s looks like a Notion page/database ID
// (raw 32-char hex or UUID form). Room identifiers that are not IDs are
// treated as human-readable slugs by callers.
func IsNotionID(s string) bool {
	noDashes := strings.ReplaceAll(s, "-", "")
	return len(noDashes) == 32 && hexIDPattern.MatchString(noDashes)
}

// extractRawID extracts a 32-character hex ID from a string.
// The ID can be a plain 32-char hex string, a UUID, or the tail of a
// title slug like My-Page-Title-abc123....
func extractRawID(s string) string {
	noDashes := strings.ReplaceAll(s, "-", "")
	if len(noDashes) == 32 && hexIDPattern.MatchString(noDashes) {
		return noDashes
	}

	if match := hexIDPattern.FindString(s); match != "" {
		return match
	}

	// UUID format at the end of a URL path segment.
	if len(s) >= 36 {
		last36 := s[len(s)-36:]
		noDashes := strings.ReplaceAll(last36, "-", "")
		if len(noDashes) == 32 && hexIDPattern.MatchString(noDashes) {
			return noDashes
		}
	}

	return ""
}

// formatAsUUID formats a 32-character hex string as UUID (8-4-4-4-12).
func formatAsUUID(rawID string) string {
	if len(rawID) != 32 {
		return rawID
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		rawID[0:8],
		rawID[8:12],
		rawID[12:16],
		rawID[16:20],
		rawID[20:32],
	)
}
