package dto

import "books-storefront/internal/model"

// Result is the envelope every mutating backend endpoint answers with.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ResourcesResponse struct {
	Books    []model.Resource `json:"books"`
	Papers   []model.Resource `json:"papers"`
	Setbooks []model.Resource `json:"setbooks"`
	All      []model.Resource `json:"all"`
	Error    string           `json:"error,omitempty"`
}

type UsersResponse struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Result
	User *model.Session `json:"user,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type PayRequest struct {
	ResourceID model.ResourceID `json:"resource_id"`
	Email      string           `json:"email"`
	Amount     model.Amount     `json:"amount"`
	Name       string           `json:"name"`
	Phone      string           `json:"phone"`
}

type PayResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	PaymentURL      string `json:"payment_url,omitempty"`
	OrderTrackingID string `json:"orderTrackingId,omitempty"`
	Error           string `json:"error,omitempty"`
}

type ConfigResponse struct {
	APIBaseURL string `json:"API_BASE_URL"`
}

// UploadRequest mirrors the admin upload form; Cover is optional.
type UploadRequest struct {
	ResourceType model.ResourceType `validate:"required"`
	ClassGrade   string             `validate:"required"`
	Subject      string             `validate:"required"`
	Title        string             `validate:"required"`
	Description  string
	CoverName    string
	Cover        []byte
}
