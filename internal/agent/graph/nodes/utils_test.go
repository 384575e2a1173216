package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swayam-agent/server/internal/agent/model"
)

func TestNormalizeMaxToolLoops(t *testing.T) {
	assert.Equal(t, DefaultMaxToolLoops, normalizeMaxToolLoops(0))
	assert.Equal(t, DefaultMaxToolLoops, normalizeMaxToolLoops(-3))
	assert.Equal(t, 7, normalizeMaxToolLoops(7))
}

func TestCheckAndMarkToolLimit(t *testing.T) {
	s := &model.TurnState{ToolLoopCount: 4}
	assert.False(t, checkAndMarkToolLimit(s, 5))
	assert.False(t, s.ToolLimitReached)

	s.ToolLoopCount = 5
	assert.True(t, checkAndMarkToolLimit(s, 5))
	assert.True(t, s.ToolLimitReached)

	// already marked: not marked again
	assert.False(t, checkAndMarkToolLimit(s, 5))
}

func TestIncrementToolLoopAndCheck(t *testing.T) {
	s := &model.TurnState{}
	for i := 1; i <= 5; i++ {
		assert.False(t, incrementToolLoopAndCheck(s, 5))
	}
	assert.True(t, incrementToolLoopAndCheck(s, 5))
	assert.True(t, s.ToolLimitReached)
	assert.Equal(t, 6, s.ToolLoopCount)
}
