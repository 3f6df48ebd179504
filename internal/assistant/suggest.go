package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"FlertaAI_ReplyAssistant/internal/billing"
	"FlertaAI_ReplyAssistant/internal/models"
	"FlertaAI_ReplyAssistant/internal/suggest"
)

type SuggestInput struct {
	ParseID   string          `json:"parseId"`
	Style     json.RawMessage `json:"style,omitempty"`
	CoachMode bool            `json:"coachMode"`
}

// 저장된 제안 + 생성 정보
type SuggestionView struct {
	ID string `json:"id"`
	suggest.Candidate
}

type SuggestOutput struct {
	Suggestions []SuggestionView `json:"suggestions"`
	LastMessage string           `json:"lastMessage"`
}

// SuggestReplies 상대방 마지막 메시지에 대한 답변 제안 생성 후 저장
func (s *Service) SuggestReplies(ctx context.Context, userID string, in SuggestInput) (*SuggestOutput, error) {
	parse, err := s.GetParse(ctx, userID, in.ParseID)
	if err != nil {
		return nil, err
	}
	opts, err := suggest.ParseOptions(in.Style)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	if in.CoachMode {
		if err := s.billing.RequireFeature(ctx, userID, billing.FeatureCoach); err != nil {
			return nil, err
		}
	}
	if len(parse.Turns) == 0 {
		return nil, ErrNoTurns
	}
	last, ok := parse.LastFrom(models.SpeakerOther)
	if !ok {
		return nil, ErrNoOtherMessage
	}

	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.generator.Generate(ctx, suggest.Request{
		LastMessage:   last.Text,
		History:       parse.Turns,
		Options:       opts,
		Tone:          profile.Tone,
		Timezone:      profile.TZ,
		BlockedTopics: profile.BlockedTopics,
		CoachMode:     in.CoachMode,
	})
	if err != nil {
		return nil, err
	}

	views := s.saveSuggestions(ctx, userID, parse.ID, in.Style, candidates)
	return &SuggestOutput{Suggestions: views, LastMessage: last.Text}, nil
}

// saveSuggestions 후보를 동시에 저장, 실패한 항목은 제외하고 순서 유지
func (s *Service) saveSuggestions(ctx context.Context, userID, parseID string, rawStyle json.RawMessage, candidates []suggest.Candidate) []SuggestionView {
	saved := make([]*SuggestionView, len(candidates))
	var eg errgroup.Group
	for i, cand := range candidates {
		eg.Go(func() error {
			style, err := styleJSON(rawStyle, cand.Style)
			if err != nil {
				s.logger.Warn("style encode failed", zap.Error(err))
				return nil
			}
			sg := &models.Suggestion{
				ID:         uuid.NewString(),
				UserID:     userID,
				ParseID:    parseID,
				Style:      style,
				Suggestion: cand.Text,
				CreatedAt:  s.now(),
			}
			if err := s.store.CreateSuggestion(ctx, sg); err != nil {
				s.logger.Warn("error saving suggestion", zap.String("parse_id", parseID), zap.Error(err))
				return nil
			}
			saved[i] = &SuggestionView{ID: sg.ID, Candidate: cand}
			return nil
		})
	}
	_ = eg.Wait()

	views := make([]SuggestionView, 0, len(candidates))
	for _, v := range saved {
		if v != nil {
			views = append(views, *v)
		}
	}
	return views
}

// styleJSON 요청 style 객체에 실제 스타일 키를 추가, 나머지 키는 유지
func styleJSON(raw json.RawMessage, key string) (json.RawMessage, error) {
	obj := map[string]json.RawMessage{}
	if trimmed := strings.TrimSpace(string(raw)); trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("styleJSON(): %w", err)
		}
	}
	k, _ := json.Marshal(key)
	obj["key"] = k
	return json.Marshal(obj)
}
