package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/auth"
	"github.com/hassan-nahid/digital-wallet-backend/internal/utils/response"
	"github.com/hassan-nahid/digital-wallet-backend/internal/validation"
)

type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User logged in successfully", result)
}
