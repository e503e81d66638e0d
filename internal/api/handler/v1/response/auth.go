package response

import "checkpoint-backend/internal/domain"

type LoginResponse struct {
	Token   string         `json:"token"`
	Profile domain.Profile `json:"profile"`
}
