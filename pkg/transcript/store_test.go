package transcript

import (
	"errors"
	"fmt"
	"testing"

	"github.com/emberfall/gbagent/pkg/model"
)

func TestStoreAppend(t *testing.T) {
	tests := []struct {
		name    string
		turn    model.Message
		prepare func(*Store)
		wantErr error
		assert  func(t *testing.T, s *Store)
	}{
		{
			name: "appends in order",
			turn: model.TextMessage(model.RoleUser, "hello"),
			assert: func(t *testing.T, s *Store) {
				t.Helper()
				turns := s.Turns()
				if len(turns) != 1 {
					t.Fatalf("turns len = %d", len(turns))
				}
				if turns[0].Text() != "hello" {
					t.Fatalf("text = %q", turns[0].Text())
				}
			},
		},
		{
			name:    "missing role rejected",
			turn:    model.Message{Parts: []model.Part{model.TextPart("hi")}},
			wantErr: ErrInvalidTurn,
		},
		{
			name:    "closed store prevents append",
			turn:    model.TextMessage(model.RoleUser, "after"),
			prepare: func(s *Store) { _ = s.Close() },
			wantErr: ErrStoreClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStoreForTest(t, 10)
			if tt.prepare != nil {
				tt.prepare(s)
			}
			err := s.Append(tt.turn)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("append failed: %v", err)
			}
			if tt.assert != nil {
				tt.assert(t, s)
			}
		})
	}
}

func TestStoreThreshold(t *testing.T) {
	s := newStoreForTest(t, 4)
	for i := 0; i < 3; i++ {
		if s.ShouldCompact() {
			t.Fatalf("should not compact at len %d", s.Len())
		}
		mustAppend(t, s, model.TextMessage(model.RoleUser, fmt.Sprintf("turn %d", i)))
	}
	if s.ShouldCompact() {
		t.Fatalf("should not compact at len %d", s.Len())
	}
	mustAppend(t, s, model.TextMessage(model.RoleAssistant, "turn 3"))
	if !s.ShouldCompact() {
		t.Fatalf("expected compaction signal at len %d", s.Len())
	}
}

func TestStoreReplace(t *testing.T) {
	s := newStoreForTest(t, 4)
	for i := 0; i < 4; i++ {
		mustAppend(t, s, model.TextMessage(model.RoleUser, fmt.Sprintf("turn %d", i)))
	}

	summary := model.Message{
		Role: model.RoleUser,
		Parts: []model.Part{
			model.TextPart("recap"),
			model.ImagePart("data:image/png;base64,AAAA"),
			model.TextPart("continue"),
		},
	}
	if err := s.Replace([]model.Message{summary}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("len after replace = %d", s.Len())
	}
	if s.ShouldCompact() {
		t.Fatal("compaction signalled immediately after replace")
	}
	turns := s.Turns()
	if len(turns[0].Parts) != 3 {
		t.Fatalf("replacement parts = %d", len(turns[0].Parts))
	}
}

func TestStoreReplaceRejectsInvalidTurn(t *testing.T) {
	s := newStoreForTest(t, 4)
	mustAppend(t, s, model.TextMessage(model.RoleUser, "kept"))

	err := s.Replace([]model.Message{{Parts: []model.Part{model.TextPart("no role")}}})
	if !errors.Is(err, ErrInvalidTurn) {
		t.Fatalf("expected ErrInvalidTurn, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("failed replace mutated store, len = %d", s.Len())
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := newStoreForTest(t, 4)
	mustAppend(t, s, model.TextMessage(model.RoleUser, "original"))

	turns := s.Turns()
	turns[0].Parts[0].Text = "mutated"

	if got := s.Turns()[0].Text(); got != "original" {
		t.Fatalf("snapshot mutation leaked into store: %q", got)
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(1); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func newStoreForTest(t *testing.T, maxHistory int) *Store {
	t.Helper()
	s, err := NewStore(maxHistory)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func mustAppend(t *testing.T, s *Store, turn model.Message) {
	t.Helper()
	if err := s.Append(turn); err != nil {
		t.Fatalf("append: %v", err)
	}
}
