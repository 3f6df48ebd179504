/**
* Name: 			billing.go
* Description: 		요금제별 기능 제한과 일일 분석 횟수 제한
* Workflow: 		활성 구독 조회 -> 없으면 free -> 기능/횟수 검사
 */

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FlertaAI_ReplyAssistant/internal/models"
	"FlertaAI_ReplyAssistant/internal/storage"
)

const (
	PlanFree     = "free"
	PlanMonthly  = "monthly"
	PlanAnnual   = "annual"
	PlanLifetime = "lifetime"

	FreeDailyAnalyses = 5
)

// 유료 기능
type Feature string

const (
	FeatureCoach     Feature = "coach"
	FeatureVoiceNote Feature = "voice_notes"
	FeatureTTS       Feature = "tts"
)

var (
	ErrQuotaExceeded = errors.New("Limite diário de análises atingido. Assine um plano para análises ilimitadas")
	ErrFeatureLocked = errors.New("Recurso disponível apenas nos planos pagos")
)

// Store billing에 필요한 저장소 기능
type Store interface {
	ActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
	CountAnalysesSince(ctx context.Context, userID string, since time.Time) (int, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock 테스트용 시계
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PlanFor 활성 구독의 plan code, 없으면 free
func (s *Service) PlanFor(ctx context.Context, userID string) (string, error) {
	sub, err := s.store.ActiveSubscription(ctx, userID, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return PlanFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("PlanFor(): %w", err)
	}
	return sub.PlanCode, nil
}

func IsPaid(plan string) bool {
	return plan != PlanFree && plan != ""
}

// RequireFeature free 플랜이면 ErrFeatureLocked
func (s *Service) RequireFeature(ctx context.Context, userID string, f Feature) error {
	plan, err := s.PlanFor(ctx, userID)
	if err != nil {
		return err
	}
	if !IsPaid(plan) {
		return fmt.Errorf("%w (%s)", ErrFeatureLocked, f)
	}
	return nil
}

// Usage 오늘 사용량
type Usage struct {
	Plan      string `json:"plan"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"` // 0 = 무제한
	Remaining int    `json:"remaining"`
}

// DailyUsage 사용자 시간대 자정 이후 분석 횟수
func (s *Service) DailyUsage(ctx context.Context, userID, tz string) (Usage, error) {
	plan, err := s.PlanFor(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	used, err := s.store.CountAnalysesSince(ctx, userID, StartOfDay(s.now(), tz))
	if err != nil {
		return Usage{}, fmt.Errorf("DailyUsage(): %w", err)
	}
	u := Usage{Plan: plan, Used: used}
	if !IsPaid(plan) {
		u.Limit = FreeDailyAnalyses
		u.Remaining = max(0, FreeDailyAnalyses-used)
	}
	return u, nil
}

// CheckQuota 새 분석 전 호출
func (s *Service) CheckQuota(ctx context.Context, userID, tz string) error {
	u, err := s.DailyUsage(ctx, userID, tz)
	if err != nil {
		return err
	}
	if u.Limit > 0 && u.Remaining == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// StartOfDay 해당 시간대의 자정, 시간대가 잘못되면 기본 시간대
func StartOfDay(now time.Time, tz string) time.Time {
	loc := models.Location(tz)
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
