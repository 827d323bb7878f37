package utils

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestPick(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, ok := Pick[int](rng, nil)
	assert.False(t, ok)

	v, ok := Pick(rng, []string{"only"})
	assert.True(t, ok)
	assert.Equal(t, "only", v)
}

func TestChance_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.False(t, Chance(rng, 0))
		assert.True(t, Chance(rng, 100))
	}
}
