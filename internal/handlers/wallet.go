package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/hassan-nahid/digital-wallet-backend/internal/middleware"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
	"github.com/hassan-nahid/digital-wallet-backend/internal/services/wallet"
	"github.com/hassan-nahid/digital-wallet-backend/internal/utils/response"
)

type WalletHandler struct {
	service wallet.Service
}

func NewWalletHandler(service wallet.Service) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) GetMyWallet(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	w, err := h.service.GetMyWallet(c.Context(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallet retrieved successfully", w)
}

func (h *WalletHandler) GetAllWallets(c *fiber.Ctx) error {
	filter := repositories.ListWalletsFilter{
		Search:     c.Query("search"),
		Role:       c.Query("role"),
		Blocked:    queryBool(c, "isBlocked"),
		MinBalance: queryFloat(c, "minBalance"),
		MaxBalance: queryFloat(c, "maxBalance"),
		SortBy:     c.Query("sortBy", "createdAt"),
		SortOrder:  c.Query("sortOrder", "desc"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 10),
	}

	page, err := h.service.GetAllWallets(c.Context(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallets retrieved successfully", page)
}

func (h *WalletHandler) BlockWallet(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	w, err := h.service.BlockWallet(c.Context(), uint(userID))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallet blocked successfully", w)
}

func (h *WalletHandler) UnblockWallet(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	w, err := h.service.UnblockWallet(c.Context(), uint(userID))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallet unblocked successfully", w)
}

func (h *WalletHandler) GetAnalytics(c *fiber.Ctx) error {
	stats, err := h.service.GetAnalytics(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallet analytics retrieved successfully", stats)
}

func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
