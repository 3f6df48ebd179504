package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"FlertaAI_ReplyAssistant/internal/models"
)

// 기본 요금제 (가격 단위: 센타보)
var defaultPlans = []models.BillingPlan{
	{Code: "free", Name: "Gratuito", Period: "sempre", PriceCents: 0},
	{Code: "monthly", Name: "Mensal", Period: "mensal", PriceCents: 1990},
	{Code: "annual", Name: "Anual", Period: "anual", PriceCents: 19900},
	{Code: "lifetime", Name: "Vitalício", Period: "vitalício", PriceCents: 39900, IsLifetime: true},
}

func (s *Store) seedPlans(ctx context.Context) error {
	for _, p := range defaultPlans {
		_, err := s.exec(ctx, `INSERT INTO billing_plans (code, name, period, price_cents, is_lifetime)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT (code) DO NOTHING`,
			p.Code, p.Name, p.Period, p.PriceCents, p.IsLifetime)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]models.BillingPlan, error) {
	rows, err := s.query(ctx, `SELECT code, name, period, price_cents, is_lifetime FROM billing_plans ORDER BY price_cents ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.BillingPlan
	for rows.Next() {
		var p models.BillingPlan
		var period sql.NullString
		var price sql.NullInt64
		var lifetime sql.NullBool
		if err := rows.Scan(&p.Code, &p.Name, &period, &price, &lifetime); err != nil {
			return nil, err
		}
		p.Period, p.PriceCents, p.IsLifetime = period.String, int(price.Int64), lifetime.Bool
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	var renews sql.NullString
	if !sub.RenewsAt.IsZero() {
		renews = sql.NullString{String: formatTime(sub.RenewsAt), Valid: true}
	}
	_, err := s.exec(ctx, `INSERT INTO subscriptions (id, user_id, plan_code, status, started_at, renews_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.PlanCode, sub.Status, formatTime(sub.StartedAt), renews)
	return err
}

// ActiveSubscription 가장 최근의 유효한 active 구독, 없으면 ErrNotFound
func (s *Store) ActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	var sub models.Subscription
	var started, renews sql.NullString
	err := s.queryRow(ctx, `SELECT s.id, s.user_id, s.plan_code, s.status, s.started_at, s.renews_at
		FROM subscriptions s JOIN billing_plans p ON p.code = s.plan_code
		WHERE s.user_id = ? AND s.status = 'active' AND (p.is_lifetime OR s.renews_at > ?)
		ORDER BY s.started_at DESC LIMIT 1`, userID, formatTime(now)).
		Scan(&sub.ID, &sub.UserID, &sub.PlanCode, &sub.Status, &started, &renews)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sub.StartedAt = parseTime(started.String)
	if renews.Valid {
		sub.RenewsAt = parseTime(renews.String)
	}
	return &sub, nil
}
