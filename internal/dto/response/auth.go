package response

import (
	"time"

	"instamakaan/internal/data/entity"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresAt   time.Time          `json:"expires_at"`
	Role        entity.AccountRole `json:"role"`
}

type SessionResponse struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}
