package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/models"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// NormalizeDate trims an ISO-8601 date or date-time. Blank input clears the
// date. The accepted string is kept verbatim so it round-trips unchanged.
func NormalizeDate(value *string) (*string, error) {
	v := optional(value)
	if v == nil {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, *v); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not an ISO-8601 date", ErrValidationFailed, *v)
}

// optional trims value and maps blank to nil.
func optional(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func requireTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	return t, nil
}

// NormalizeLabels validates labels against the palette and removes duplicates,
// keeping first-seen order.
func NormalizeLabels(labels []models.Label) ([]models.Label, error) {
	out := make([]models.Label, 0, len(labels))
	seen := make(map[models.Label]struct{}, len(labels))
	for _, l := range labels {
		l = models.Label(strings.ToLower(strings.TrimSpace(string(l))))
		if !l.Valid() {
			return nil, fmt.Errorf("%w: unknown label %q", ErrValidationFailed, l)
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) > constants.MaxLabelsPerItem {
		return nil, fmt.Errorf("%w: at most %d labels are allowed", ErrValidationFailed, constants.MaxLabelsPerItem)
	}
	return out, nil
}

// sameLabelSet compares two label sets ignoring order.
func sameLabelSet(a, b []models.Label) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[models.Label]struct{}, len(a))
	for _, l := range a {
		set[l] = struct{}{}
	}
	for _, l := range b {
		if _, ok := set[l]; !ok {
			return false
		}
	}
	return true
}

// preview truncates s to the description preview length.
func preview(s string) string {
	r := []rune(s)
	if len(r) > constants.DescriptionPreviewLength {
		r = r[:constants.DescriptionPreviewLength]
	}
	return string(r) + "..."
}
