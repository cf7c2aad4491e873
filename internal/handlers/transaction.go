package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hassan-nahid/digital-wallet-backend/internal/middleware"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/transaction"
	"github.com/hassan-nahid/digital-wallet-backend/internal/utils/response"
	"github.com/hassan-nahid/digital-wallet-backend/internal/validation"
)

type TransactionHandler struct {
	service transaction.Service
}

func NewTransactionHandler(service transaction.Service) *TransactionHandler {
	return &TransactionHandler{service: service}
}

type addMoneyRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

func (h *TransactionHandler) AddMoney(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req addMoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.AddMoney(c.Context(), transaction.AddMoneyInput{
		UserID:      claims.UserID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Money added successfully", result)
}

type transferRequest struct {
	ReceiverID  uint    `json:"receiverId" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

func (h *TransactionHandler) SendMoney(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.SendMoney(c.Context(), transaction.SendMoneyInput{
		SenderID:    claims.UserID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Money sent successfully", result)
}

func (h *TransactionHandler) CashIn(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.CashIn(c.Context(), transaction.CashInInput{
		SenderID:    claims.UserID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cash in successful", result)
}

func (h *TransactionHandler) CashOut(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.CashOut(c.Context(), transaction.CashOutInput{
		SenderID:    claims.UserID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cash out successful", result)
}

func (h *TransactionHandler) AdminWithdraw(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var req addMoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.AdminWithdraw(c.Context(), transaction.AdminWithdrawInput{
		UserID:      claims.UserID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal successful", result)
}

func (h *TransactionHandler) GetMyTransactions(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	filter := repositories.MyTransactionsFilter{
		Type:      c.Query("transactionType"),
		SortOrder: c.Query("sortOrder", "desc"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
	}

	page, err := h.service.GetMyTransactions(c.Context(), claims.UserID, filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions retrieved successfully", page)
}

func (h *TransactionHandler) GetAllTransactions(c *fiber.Ctx) error {
	filter := repositories.ListTransactionsFilter{
		Search:       c.Query("search"),
		Type:         c.Query("transactionType"),
		Status:       c.Query("status"),
		SenderRole:   c.Query("senderRole"),
		ReceiverRole: c.Query("receiverRole"),
		MinAmount:    queryFloat(c, "minAmount"),
		MaxAmount:    queryFloat(c, "maxAmount"),
		StartDate:    queryDate(c, "startDate"),
		EndDate:      queryDate(c, "endDate"),
		SortBy:       c.Query("sortBy", "createdAt"),
		SortOrder:    c.Query("sortOrder", "desc"),
		Page:         c.QueryInt("page", 1),
		Limit:        c.QueryInt("limit", 10),
	}

	page, err := h.service.GetAllTransactions(c.Context(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions retrieved successfully", page)
}

func (h *TransactionHandler) GetMyTransactionByID(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid transaction id")
	}

	tx, err := h.service.GetMyTransactionByID(c.Context(), claims.UserID, uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction retrieved successfully", tx)
}

func (h *TransactionHandler) GetAnalytics(c *fiber.Ctx) error {
	stats, err := h.service.GetAnalytics(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction analytics retrieved successfully", stats)
}

func queryFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryDate(c *fiber.Ctx, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse("2006-01-02", raw); err != nil {
			return nil
		}
	}
	return &t
}
