package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_NextIsMonotonicAndNeverZero(t *testing.T) {
	g := &Generator{}

	first := g.Next()
	second := g.Next()
	third := g.Next()

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Equal(t, uint64(3), third)
}

func TestGenerator_DistinctGeneratorsAreIndependent(t *testing.T) {
	a := &Generator{}
	b := &Generator{}

	assert.Equal(t, uint64(1), a.Next())
	assert.Equal(t, uint64(1), b.Next())
	assert.Equal(t, uint64(2), a.Next())
}
