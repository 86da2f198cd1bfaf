package livesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var filterFixture = []Enrollment{
	{Dorsal: 101, AthleteName: "Ana Costa", Status: "STARTED"},
	{Dorsal: 102, AthleteName: "Bruno Silva", Status: "FINISHED"},
	{Dorsal: 210, AthleteName: "Carla Anjos", Status: "DNF"},
}

func TestFilterEmptyTermReturnsAll(t *testing.T) {
	got := FilterEnrollments(filterFixture, "")
	assert.Equal(t, filterFixture, got)

	got = FilterEnrollments(filterFixture, "   ")
	assert.Equal(t, filterFixture, got)
}

func TestFilterByNameCaseInsensitive(t *testing.T) {
	got := FilterEnrollments(filterFixture, "ANA")
	require.Len(t, got, 2)
	assert.Equal(t, "Ana Costa", got[0].AthleteName)
	assert.Equal(t, "Carla Anjos", got[1].AthleteName)
}

func TestFilterByDorsalSubstring(t *testing.T) {
	got := FilterEnrollments(filterFixture, "10")
	require.Len(t, got, 2)
	assert.Equal(t, 101, got[0].Dorsal)
	assert.Equal(t, 102, got[1].Dorsal)
}

func TestFilterIsPure(t *testing.T) {
	once := FilterEnrollments(filterFixture, "silva")
	twice := FilterEnrollments(FilterEnrollments(filterFixture, "silva"), "silva")
	assert.Equal(t, once, twice)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	input := []Enrollment{{Dorsal: 1, AthleteName: "Ana", Status: "STARTED"}}
	got := FilterEnrollments(input, "")
	got[0].Status = "mutated"
	assert.Equal(t, "STARTED", input[0].Status)
}

func TestFilterNoMatches(t *testing.T) {
	got := FilterEnrollments(filterFixture, "zzz")
	assert.Empty(t, got)
}
