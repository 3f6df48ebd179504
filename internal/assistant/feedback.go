package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"FlertaAI_ReplyAssistant/internal/models"
)

// SetAccepted 제안 사용 여부 기록
func (s *Service) SetAccepted(ctx context.Context, userID, suggestionID string, accepted bool) error {
	return notFound(s.store.SetAccepted(ctx, suggestionID, userID, accepted), ErrSuggestionNotFound)
}

type OutcomeInput struct {
	Outcome       string `json:"outcome"`
	FeedbackScore int    `json:"feedbackScore"`
	Notes         string `json:"notes"`
}

// RecordOutcome 제안을 보낸 뒤의 결과 피드백
func (s *Service) RecordOutcome(ctx context.Context, userID, suggestionID string, in OutcomeInput) (*models.ConversationOutcome, error) {
	outcome := strings.TrimSpace(in.Outcome)
	if outcome == "" {
		return nil, invalid("outcome is required")
	}
	if in.FeedbackScore < 1 || in.FeedbackScore > 5 {
		return nil, invalid("feedbackScore must be between 1 and 5")
	}
	if _, err := s.store.GetSuggestion(ctx, suggestionID, userID); err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}

	o := &models.ConversationOutcome{
		ID:            uuid.NewString(),
		SuggestionID:  suggestionID,
		Outcome:       outcome,
		FeedbackScore: in.FeedbackScore,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateOutcome(ctx, o); err != nil {
		return nil, fmt.Errorf("RecordOutcome(): %w", err)
	}
	return o, nil
}
