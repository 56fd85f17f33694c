package domain

import "strings"

// CleanTags trims every tag and drops the blank ones, keeping order.
func CleanTags(tags []Tag) []Tag {
	cleaned := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned
}

// for debug
func (c Composition) String() string {
	return c.FileName + " [" + strings.Join(c.Tags, ", ") + "] (" + c.Id + ")"
}
