package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hassan-nahid/digital-wallet-backend/internal/middleware"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/user"
	"github.com/hassan-nahid/digital-wallet-backend/internal/utils/response"
	"github.com/hassan-nahid/digital-wallet-backend/internal/validation"
)

type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Address  string `json:"address" validate:"required"`
	NID      int64  `json:"nid" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=USER AGENT"`
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	created, err := h.service.Register(c.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Address:  req.Address,
		NID:      req.NID,
		Role:     req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User created successfully", created)
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	u, err := h.service.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved successfully", u)
}

func (h *UserHandler) MakeAgent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	u, err := h.service.MakeAgent(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User promoted to agent successfully", u)
}

func (h *UserHandler) SuspendAgent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	u, err := h.service.SuspendAgent(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Agent suspended successfully", u)
}

func (h *UserHandler) BlockUser(c *fiber.Ctx) error {
	return h.setStatus(c, models.StatusBlocked, "User blocked successfully")
}

func (h *UserHandler) UnblockUser(c *fiber.Ctx) error {
	return h.setStatus(c, models.StatusActive, "User unblocked successfully")
}

func (h *UserHandler) setStatus(c *fiber.Ctx, status, message string) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	u, err := h.service.SetActiveStatus(c.Context(), uint(id), status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, message, u)
}

func (h *UserHandler) SearchUser(c *fiber.Ctx) error {
	return h.search(c, models.RoleUser)
}

func (h *UserHandler) SearchAgent(c *fiber.Ctx) error {
	return h.search(c, models.RoleAgent)
}

func (h *UserHandler) search(c *fiber.Ctx, role string) error {
	email := c.Query("email")
	if email == "" {
		return response.BadRequest(c, "Email query parameter is required")
	}

	u, err := h.service.SearchByEmail(c.Context(), email, role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved successfully", u)
}
