package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"recyclex/internal/usecase"
	"recyclex/pkg/logger"
	"recyclex/pkg/response"
	"recyclex/pkg/utils"
)

type EscrowHandler struct {
	escrowUseCase *usecase.EscrowUseCase
}

func NewEscrowHandler(escrowUseCase *usecase.EscrowUseCase) *EscrowHandler {
	return &EscrowHandler{
		escrowUseCase: escrowUseCase,
	}
}

type createEscrowRequest struct {
	AuctionID         string   `json:"auction_id" validate:"required"`
	SupplierID        string   `json:"supplier_id" validate:"required"`
	Amount            int64    `json:"amount" validate:"required,gt=0"`
	Currency          string   `json:"currency" validate:"omitempty,oneof=LKR"`
	ReleaseConditions []string `json:"release_conditions"`
	HoldDays          int      `json:"hold_days" validate:"omitempty,min=1,max=30"`
}

type disputeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution" validate:"required,oneof=release refund"`
}

func (h *EscrowHandler) CreateEscrow(c echo.Context) error {
	var req createEscrowRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	escrow, err := h.escrowUseCase.CreateEscrow(c.Request().Context(), usecase.CreateEscrowInput{
		AuctionID:         req.AuctionID,
		BuyerID:           userID,
		SupplierID:        req.SupplierID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		ReleaseConditions: req.ReleaseConditions,
		HoldDuration:      time.Duration(req.HoldDays) * 24 * time.Hour,
	})
	if err != nil {
		logger.Error("Error creating escrow: %v", err)
		return response.Error(c, err)
	}

	return response.Created(c, escrow)
}

func (h *EscrowHandler) GetEscrow(c echo.Context) error {
	escrow, err := h.escrowUseCase.GetEscrow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) ListEscrows(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	escrows, err := h.escrowUseCase.GetEscrowsByUser(c.Request().Context(), userID, utils.GetPagination(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrows)
}

func (h *EscrowHandler) Fund(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	escrow, err := h.escrowUseCase.Fund(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) Hold(c echo.Context) error {
	escrow, err := h.escrowUseCase.Hold(c.Request().Context(), c.Param("id"), 0)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) SatisfyCondition(c echo.Context) error {
	escrow, err := h.escrowUseCase.SatisfyCondition(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) Release(c echo.Context) error {
	escrow, err := h.escrowUseCase.Release(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) Dispute(c echo.Context) error {
	var req disputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	escrow, err := h.escrowUseCase.Dispute(c.Request().Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) ResolveDispute(c echo.Context) error {
	var req resolveDisputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID, err := getUserID(c)
	if err != nil {
		return err
	}

	escrow, err := h.escrowUseCase.ResolveDispute(c.Request().Context(), c.Param("id"), adminID, req.Resolution)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}

func (h *EscrowHandler) GetDispute(c echo.Context) error {
	dispute, err := h.escrowUseCase.GetDispute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, dispute)
}

func (h *EscrowHandler) Refund(c echo.Context) error {
	escrow, err := h.escrowUseCase.Refund(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, escrow)
}
