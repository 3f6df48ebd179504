package models

import "time"

type BillingPlan struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Period     string `json:"period"`
	PriceCents int    `json:"price_cents"`
	IsLifetime bool   `json:"is_lifetime"`
}

type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PlanCode  string    `json:"plan_code"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	RenewsAt  time.Time `json:"renews_at"`
}
