package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestName(t *testing.T) {
	names := []string{"Red Dragons", "Blue Sharks", "Night Owls"}

	best, ok := closestName("red dragon", names)
	assert.True(t, ok)
	assert.Equal(t, "Red Dragons", best)

	best, ok = closestName("BLUE SHARK", names)
	assert.True(t, ok)
	assert.Equal(t, "Blue Sharks", best)

	_, ok = closestName("xyz", names)
	assert.False(t, ok)

	_, ok = closestName("anything", nil)
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindCapacity, KindOf(ErrTeamFull))
	assert.Equal(t, KindStateConflict, KindOf(ErrAlreadyAccepted))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))

	suggested := ErrTeamNotFound.withMessage("Team \"x\" not found. Did you mean \"y\"?")
	assert.ErrorIs(t, suggested, ErrTeamNotFound)
	assert.Equal(t, KindNotFound, KindOf(suggested))
}
