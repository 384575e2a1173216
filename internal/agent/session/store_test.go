package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDeltaNewFieldsNoContradiction(t *testing.T) {
	s := NewStore()
	got := s.MergeDelta(map[string]string{"name": "Radha", "age": "64"})
	assert.Empty(t, got)
	assert.Equal(t, map[string]string{"name": "Radha", "age": "64"}, s.Profile())
}

func TestMergeDeltaEqualAfterTrimNoContradiction(t *testing.T) {
	s := NewStore()
	s.MergeDelta(map[string]string{"village": "Wai"})
	got := s.MergeDelta(map[string]string{"village": "  Wai "})
	assert.Empty(t, got)
	assert.Empty(t, s.Contradictions(0))
}

func TestMergeDeltaConflictRecordsExactlyOneContradiction(t *testing.T) {
	s := NewStore()
	s.MergeDelta(map[string]string{"age": "60"})
	got := s.MergeDelta(map[string]string{"age": "45"})

	require.Len(t, got, 1)
	assert.Equal(t, Contradiction{Field: "age", Old: "60", New: "45"}, got[0])
	// last write wins
	assert.Equal(t, "45", s.Profile()["age"])
	assert.Len(t, s.Contradictions(0), 1)
}

func TestMergeDeltaEmptyValueIgnored(t *testing.T) {
	s := NewStore()
	s.MergeDelta(map[string]string{"age": "60"})
	got := s.MergeDelta(map[string]string{"age": "", "income": "   "})
	assert.Empty(t, got)
	assert.Equal(t, "60", s.Profile()["age"])
	_, ok := s.Profile()["income"]
	assert.False(t, ok)
}

func TestContradictionsBoundedView(t *testing.T) {
	s := NewStore()
	s.MergeDelta(map[string]string{"age": "1"})
	for i := '2'; i <= '6'; i++ {
		s.MergeDelta(map[string]string{"age": string(i)})
	}

	last3 := s.Contradictions(3)
	require.Len(t, last3, 3)
	assert.Equal(t, "4", last3[0].New)
	assert.Equal(t, "6", last3[2].New)
	assert.Len(t, s.Contradictions(0), 5)
}

func TestProfileSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.MergeDelta(map[string]string{"name": "Radha"})
	snap := s.Profile()
	snap["name"] = "mutated"
	assert.Equal(t, "Radha", s.Profile()["name"])
}

func TestManagerAcquire(t *testing.T) {
	m := NewManager()
	a := m.Acquire("abc")
	b := m.Acquire("abc")
	assert.Same(t, a, b)

	fresh := m.Acquire("")
	assert.NotEmpty(t, fresh.ID)
	assert.NotSame(t, a, fresh)
}

func TestMergeDeltaConcurrentSafety(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.MergeDelta(map[string]string{"age": "60"})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "60", s.Profile()["age"])
	assert.Empty(t, s.Contradictions(0))
}
