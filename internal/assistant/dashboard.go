package assistant

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"FlertaAI_ReplyAssistant/internal/billing"
	"FlertaAI_ReplyAssistant/internal/models"
	"FlertaAI_ReplyAssistant/internal/storage"
)

const recentActivityLimit = 10

// 최근 활동 항목
type Activity struct {
	Type        string    `json:"type"` // upload, parse, suggestion
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Dashboard struct {
	TotalConversations int           `json:"totalConversations"`
	TotalSuggestions   int           `json:"totalSuggestions"`
	AcceptedCount      int           `json:"acceptedSuggestions"`
	SuccessRate        int           `json:"successRate"`
	RecentActivity     []Activity    `json:"recentActivity"`
	Usage              billing.Usage `json:"usage"`
}

// Dashboard 사용 통계와 최근 활동
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	uploads, err := s.store.CountUploads(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Dashboard(): %w", err)
	}
	parses, err := s.store.CountParses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Dashboard(): %w", err)
	}
	total, accepted, err := s.store.SuggestionStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Dashboard(): %w", err)
	}
	recent, err := s.recentActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	usage, err := s.billing.DailyUsage(ctx, userID, profile.TZ)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalConversations: uploads + parses,
		TotalSuggestions:   total,
		AcceptedCount:      accepted,
		SuccessRate:        SuccessRate(accepted, total),
		RecentActivity:     recent,
		Usage:              usage,
	}, nil
}

// SuccessRate 채택률 (%, 반올림)
func SuccessRate(accepted, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(accepted) / float64(total) * 100))
}

func (s *Service) recentActivity(ctx context.Context, userID string) ([]Activity, error) {
	uploads, err := s.store.ListUploads(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("recentActivity(): %w", err)
	}
	parses, err := s.store.ListParses(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("recentActivity(): %w", err)
	}
	suggestions, err := s.store.ListSuggestions(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("recentActivity(): %w", err)
	}

	items := make([]Activity, 0, len(uploads)+len(parses)+len(suggestions))
	for _, u := range uploads {
		items = append(items, Activity{Type: "upload", ID: u.ID, Description: "Upload de " + u.Kind, CreatedAt: u.CreatedAt})
	}
	for _, p := range parses {
		items = append(items, Activity{Type: "parse", ID: p.ID,
			Description: fmt.Sprintf("Conversa analisada (%d mensagens)", len(p.Turns)), CreatedAt: p.CreatedAt})
	}
	for _, sg := range suggestions {
		desc := "Sugestão gerada"
		if sg.Accepted != nil && *sg.Accepted {
			desc = "Sugestão usada"
		}
		items = append(items, Activity{Type: "suggestion", ID: sg.ID, Description: desc, CreatedAt: sg.CreatedAt})
	}

	slices.SortStableFunc(items, func(a, b Activity) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if len(items) > recentActivityLimit {
		items = items[:recentActivityLimit]
	}
	return items, nil
}

type HistoryEntry struct {
	Parse       models.ChatParse    `json:"parse"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

// History 최근 분석 순으로 제안 포함
func (s *Service) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	parses, err := s.store.ListParses(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("History(): %w", err)
	}
	out := make([]HistoryEntry, 0, len(parses))
	for _, p := range parses {
		sgs, err := s.store.ListSuggestionsByParse(ctx, p.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("History(): %w", err)
		}
		if sgs == nil {
			sgs = []models.Suggestion{}
		}
		out = append(out, HistoryEntry{Parse: p, Suggestions: sgs})
	}
	return out, nil
}

func (s *Service) Plans(ctx context.Context) ([]models.BillingPlan, error) {
	return s.store.ListPlans(ctx)
}

type SubscriptionView struct {
	Plan         string               `json:"plan"`
	Subscription *models.Subscription `json:"subscription"`
	Usage        billing.Usage        `json:"usage"`
}

// Subscription 현재 플랜과 오늘 사용량
func (s *Service) Subscription(ctx context.Context, userID string) (*SubscriptionView, error) {
	sub, err := s.store.ActiveSubscription(ctx, userID, s.now())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("Subscription(): %w", err)
	}
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	usage, err := s.billing.DailyUsage(ctx, userID, profile.TZ)
	if err != nil {
		return nil, err
	}
	return &SubscriptionView{Plan: usage.Plan, Subscription: sub, Usage: usage}, nil
}
