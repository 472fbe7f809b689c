package handler

import (
	"time"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Users ---

type userListResponse struct {
	Users []*domain.User `json:"users"`
	Count int            `json:"count"`
}

type roleMembershipRequest struct {
	Role string `json:"role" validate:"required"`
}

type rolesResponse struct {
	Roles []string `json:"roles"`
}

type claimRequest struct {
	Type  string `json:"type"  validate:"required"`
	Value string `json:"value" validate:"required"`
}

type claimsResponse struct {
	Claims []domain.Claim `json:"claims"`
}

type lockoutRequest struct {
	Until time.Time `json:"until" validate:"required"`
}

type lockoutResponse struct {
	LockoutEnd        *time.Time `json:"lockout_end"`
	AccessFailedCount int        `json:"access_failed_count"`
}

// --- Roles ---

type createRoleRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// --- Import ---

type importClaimRequest struct {
	Type  string `json:"type"  validate:"required"`
	Value string `json:"value" validate:"required"`
}

type importUserRequest struct {
	UserName    string               `json:"username"     validate:"required"`
	Email       string               `json:"email"        validate:"omitempty,email"`
	PhoneNumber string               `json:"phone_number"`
	Password    string               `json:"password"     validate:"omitempty,min=8"`
	Roles       []string             `json:"roles"`
	Claims      []importClaimRequest `json:"claims"       validate:"dive"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
