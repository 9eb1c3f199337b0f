package inbound

import "time"

type SendCodeRequest struct {
	Identifier string `json:"identifier" example:"alice@example.com"`
	Purpose    string `json:"purpose" example:"REGISTRATION"`
	Channel    string `json:"channel" example:"EMAIL"`
}

type SendCodeResponse struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Code      string    `json:"code,omitempty"`
}

func (SendCodeResponse) Message() string {
	return "Verification code has been sent."
}

type VerifyRequest struct {
	TokenID string `json:"token_id"`
	Code    string `json:"code" example:"482913"`
}

type VerifyResponse struct {
	Verified          bool `json:"verified"`
	AttemptsRemaining int  `json:"attempts_remaining"`
}

func (r VerifyResponse) Message() string {
	if r.Verified {
		return "Code verified."
	}
	return "Incorrect code. Please try again."
}

type LogEntryResponse struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Identifier string    `json:"identifier"`
	Purpose    string    `json:"purpose"`
	Channel    string    `json:"channel"`
	Status     string    `json:"status"`
	Metadata   string    `json:"metadata,omitempty"`
}

type LogsResponse []LogEntryResponse

func (r LogsResponse) Meta() map[string]any {
	return map[string]any{"count": len(r)}
}

type StatsResponse struct {
	TotalSent          int     `json:"total_sent"`
	TotalVerified      int     `json:"total_verified"`
	TotalFailed        int     `json:"total_failed"`
	TotalBlocked       int     `json:"total_blocked"`
	TotalExpired       int     `json:"total_expired"`
	SuccessRatePercent float64 `json:"success_rate_percent"`
}
