package handler

import (
	"time"

	"github.com/lumina-ai/studio/internal/core/domain"
)

// --- Auth ---

type signupRequest struct {
	Name     string `json:"name"     validate:"required,notblank"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type dailyRewardResponse struct {
	Granted bool  `json:"granted"`
	Amount  int64 `json:"amount"`
	Coins   int64 `json:"coins"`
}

type authResponse struct {
	Token       string               `json:"token,omitempty"`
	User        *domain.User         `json:"user,omitempty"`
	DailyReward *dailyRewardResponse `json:"daily_reward,omitempty"`
}

// --- Billing ---

type paymentLinkResponse struct {
	Plan domain.Plan `json:"plan"`
	URI  string      `json:"uri"`
}

type submitPaymentRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
	UTR    string `json:"utr"     validate:"required,notblank,max=64"`
}

// --- Studio ---

type generateRequest struct {
	Prompt      string `json:"prompt"       validate:"required,notblank"`
	AspectRatio string `json:"aspect_ratio" validate:"omitempty,oneof=1:1 3:4 4:3 9:16 16:9"`
}

type editRequest struct {
	Image    string `json:"image"     validate:"required,base64"`
	MIMEType string `json:"mime_type" validate:"omitempty,startswith=image/"`
	Prompt   string `json:"prompt"    validate:"required,notblank"`
}

type analyzeRequest struct {
	Image    string `json:"image"     validate:"required,base64"`
	MIMEType string `json:"mime_type" validate:"omitempty,startswith=image/"`
	Question string `json:"question"`
}

type imageResponse struct {
	Image    string `json:"image"`
	MIMEType string `json:"mime_type"`
	Coins    int64  `json:"coins"`
}

type analysisResponse struct {
	Text  string `json:"text"`
	Coins int64  `json:"coins"`
}

// --- Admin ---

type reviewResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	ReviewedAt  time.Time          `json:"reviewed_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}
