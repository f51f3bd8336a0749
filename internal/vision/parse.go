package vision

import (
	"strings"
)

// ParseTags turns a model response into at most MaxTags normalised tags.
// It accepts one tag per line or comma-separated lists, strips list markers
// and hashes, and drops preamble lines and duplicates.
func ParseTags(raw string) []string {
	tags := make([]string, 0, MaxTags)
	seen := make(map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isPreamble(line) {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			tag := ParseTag(part)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
			if len(tags) == MaxTags {
				return tags
			}
		}
	}
	return tags
}

// ParseTag normalises a single candidate, returning "" if nothing usable remains.
func ParseTag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•# ")
	if i := strings.IndexAny(s, ".)"); i > 0 && isDigits(s[:i]) {
		s = s[i+1:]
	}
	s = strings.Trim(s, `"'.`+"`")
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	// Longer phrases are sentences, not tags.
	if len(strings.Fields(s)) > 3 {
		return ""
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isPreamble(line string) bool {
	for _, p := range []string{"Here", "I see", "Based on", "Sure", "Tags:"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return strings.HasSuffix(line, ":")
}
