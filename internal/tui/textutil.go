package tui

import "strings"

// truncateEnd shortens s to at most limit runes, ending in an ellipsis when
// anything was cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which suits URLs where the host and
// the file name carry the meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	left := (limit - 1) / 2
	right := limit - 1 - left
	return string(r[:left]) + "…" + string(r[len(r)-right:])
}

// splitTags turns a provider tag string ("cat, kitten, pet") into its
// non-empty parts.
func splitTags(tags string) []string {
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// tagsTitle is the display title of an image: its first few tags.
func tagsTitle(tags string, max int) string {
	parts := splitTags(tags)
	if len(parts) == 0 {
		return "untitled"
	}
	if max > 0 && len(parts) > max {
		parts = parts[:max]
	}
	return strings.Join(parts, " · ")
}
