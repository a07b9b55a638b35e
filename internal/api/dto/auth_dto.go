package dto

import (
	"time"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// LoginRequest is the department login payload.
type LoginRequest struct {
	Department string `json:"department"`
	Password   string `json:"password"`
}

// LoginResponse carries the session token and the bound account.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      domain.Account `json:"user"`
}
