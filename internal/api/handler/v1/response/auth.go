package response

import "github.com/vietanh2810/school-portal/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
