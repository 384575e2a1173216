package nodes

import (
	"github.com/swayam-agent/server/internal/agent/model"
)

const DefaultMaxToolLoops = 5

// normalizeMaxToolLoops returns a sane default when the provided value is invalid.
func normalizeMaxToolLoops(n int) int {
	if n <= 0 {
		return DefaultMaxToolLoops
	}
	return n
}

// checkAndMarkToolLimit evaluates whether another tool round trip would exceed
// the limit and, if so, marks the state accordingly. Returns true when marked now.
func checkAndMarkToolLimit(state *model.TurnState, max int) bool {
	max = normalizeMaxToolLoops(max)
	if !state.ToolLimitReached && state.ToolLoopCount >= max {
		state.ToolLimitReached = true
		return true
	}
	return false
}

// incrementToolLoopAndCheck increments the loop count and marks the state if
// it exceeds the limit after incrementing. Returns true when exceeded.
func incrementToolLoopAndCheck(state *model.TurnState, max int) bool {
	max = normalizeMaxToolLoops(max)
	state.ToolLoopCount++
	if state.ToolLoopCount > max {
		state.ToolLimitReached = true
		return true
	}
	return false
}
