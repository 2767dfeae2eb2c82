package agent

import (
	"context"
	"fmt"

	"github.com/emberfall/gbagent/pkg/frame"
	"github.com/emberfall/gbagent/pkg/model"
)

// compactHistory condenses the full transcript into a single replacement
// turn: a model-authored recap, a fresh frame, and an invitation to continue.
// The swap is wholesale and lossy; it bounds every later request to O(1)
// turns regardless of session length.
func (s *Session) compactHistory(ctx context.Context) error {
	s.log.Info().Int("turns", s.store.Len()).Msg("generating conversation summary")

	req := model.Request{
		System:   systemPrompt,
		Messages: append(s.store.Turns(), model.TextMessage(model.RoleUser, summaryPrompt)),
		// No tools: this round must come back as plain text.
	}
	resp, err := s.reasoner.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("summary request: %w", err)
	}
	summary := resp.Text()
	s.log.Info().Str("summary", summary).Msg("game progress summary")

	img, err := s.actor.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("capture frame for summary: %w", err)
	}
	encoded, err := frame.EncodeDataURI(img, s.upscale)
	if err != nil {
		return err
	}

	replacement := model.Message{
		Role: model.RoleUser,
		Parts: []model.Part{
			model.TextPart(fmt.Sprintf(summaryLabel, s.store.MaxHistory(), summary)),
			model.ImagePart(encoded),
			model.TextPart(continuePrompt),
		},
	}
	if err := s.store.Replace([]model.Message{replacement}); err != nil {
		return err
	}

	s.log.Info().Msg("transcript condensed into summary")
	return nil
}
