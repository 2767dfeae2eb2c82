// Package transcript keeps the bounded in-process conversation history for
// an agent session. Turns accumulate in insertion order until the compaction
// threshold is reached, at which point the owner swaps the whole sequence for
// a condensed replacement. The store never inspects turn content.
package transcript

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/emberfall/gbagent/pkg/model"
)

var (
	// ErrInvalidTurn reports a turn missing its role.
	ErrInvalidTurn = errors.New("transcript: invalid turn")
	// ErrStoreClosed reports operations against a closed store.
	ErrStoreClosed = errors.New("transcript: store closed")
	// ErrInvalidThreshold reports a compaction threshold too small to hold
	// even a single observation/response pair.
	ErrInvalidThreshold = errors.New("transcript: max history must be at least 2")
)

// Store holds the ordered session history in process memory.
type Store struct {
	mu         sync.RWMutex
	turns      []model.Message
	maxHistory int
	closed     bool
}

// NewStore constructs a Store that signals compaction once maxHistory turns
// have accumulated.
func NewStore(maxHistory int) (*Store, error) {
	if maxHistory < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, maxHistory)
	}
	return &Store{
		turns:      make([]model.Message, 0, maxHistory),
		maxHistory: maxHistory,
	}, nil
}

// Append adds one turn to the history.
func (s *Store) Append(turn model.Message) error {
	if strings.TrimSpace(turn.Role) == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidTurn)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.turns = append(s.turns, cloneTurn(turn))
	return nil
}

// Len returns the current number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// MaxHistory returns the compaction threshold.
func (s *Store) MaxHistory() int {
	return s.maxHistory
}

// ShouldCompact reports whether the history has reached the threshold.
func (s *Store) ShouldCompact() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns) >= s.maxHistory
}

// Replace atomically discards all prior turns in favor of the replacement
// sequence. Compaction is all-or-nothing; individual turns are never evicted.
func (s *Store) Replace(turns []model.Message) error {
	for _, turn := range turns {
		if strings.TrimSpace(turn.Role) == "" {
			return fmt.Errorf("%w: role is required", ErrInvalidTurn)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.turns = cloneTurns(turns)
	return nil
}

// Turns returns a defensive copy of the current history.
func (s *Store) Turns() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTurns(s.turns)
}

// Close releases the history. Subsequent mutations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.turns = nil
	return nil
}

func cloneTurns(src []model.Message) []model.Message {
	if len(src) == 0 {
		return nil
	}
	dst := make([]model.Message, len(src))
	for i, turn := range src {
		dst[i] = cloneTurn(turn)
	}
	return dst
}

func cloneTurn(turn model.Message) model.Message {
	cloned := turn
	if len(turn.Parts) > 0 {
		cloned.Parts = append([]model.Part(nil), turn.Parts...)
	}
	if len(turn.ToolCalls) > 0 {
		cloned.ToolCalls = make([]model.ToolCall, len(turn.ToolCalls))
		for i, call := range turn.ToolCalls {
			cloned.ToolCalls[i] = call
			cloned.ToolCalls[i].RawArgs = append([]byte(nil), call.RawArgs...)
		}
	}
	return cloned
}
