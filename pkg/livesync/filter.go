package livesync

import (
	"strconv"
	"strings"
)

// FilterEnrollments returns the enrollments whose athlete name or dorsal
// number contains the term, case-insensitively. It never mutates the input;
// an empty or whitespace-only term returns a copy with the same elements in
// the same order.
func FilterEnrollments(enrollments []Enrollment, term string) []Enrollment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]Enrollment, len(enrollments))
		copy(out, enrollments)
		return out
	}

	out := make([]Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if strings.Contains(strings.ToLower(e.AthleteName), term) ||
			strings.Contains(strconv.Itoa(e.Dorsal), term) {
			out = append(out, e)
		}
	}
	return out
}
