package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recyclex/internal/usecase"
	"recyclex/pkg/logger"
	"recyclex/pkg/response"
	"recyclex/pkg/utils"
)

type WalletHandler struct {
	walletUseCase *usecase.WalletUseCase
}

func NewWalletHandler(walletUseCase *usecase.WalletUseCase) *WalletHandler {
	return &WalletHandler{
		walletUseCase: walletUseCase,
	}
}

// getUserID extracts the authenticated user from the request context.
func getUserID(c echo.Context) (string, error) {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid session")
	}
	return userID, nil
}

type createWalletRequest struct {
	Type     string `json:"type" validate:"omitempty,oneof=buyer supplier agent"`
	Currency string `json:"currency" validate:"omitempty,oneof=LKR"`
}

type depositRequest struct {
	WalletID        string `json:"wallet_id" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

type withdrawRequest struct {
	WalletID        string `json:"wallet_id" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

type createPaymentMethodRequest struct {
	Type          string `json:"type" validate:"required,oneof=bank_account credit_card debit_card digital_wallet mobile_payment"`
	Provider      string `json:"provider" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	AccountName   string `json:"account_name" validate:"required"`
	IsDefault     bool   `json:"is_default"`
}

func (h *WalletHandler) CreateWallet(c echo.Context) error {
	var req createWalletRequest
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

	wallet, err := h.walletUseCase.CreateWallet(c.Request().Context(), usecase.CreateWalletInput{
		UserID:   userID,
		Type:     req.Type,
		Currency: req.Currency,
	})
	if err != nil {
		logger.Error("Error creating wallet: %v", err)
		return response.Error(c, err)
	}

	return response.Created(c, wallet)
}

func (h *WalletHandler) GetWallets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	wallets, err := h.walletUseCase.GetWallets(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, wallets)
}

func (h *WalletHandler) GetTransactions(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	walletID := c.Param("id")
	pagination := utils.GetPagination(c)

	transactions, err := h.walletUseCase.GetTransactions(c.Request().Context(), userID, walletID, pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transactions)
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	var req depositRequest
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

	result, err := h.walletUseCase.Deposit(c.Request().Context(), usecase.DepositInput{
		UserID:          userID,
		WalletID:        req.WalletID,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		logger.Error("Deposit failed for user %s: %v", userID, err)
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *WalletHandler) Withdraw(c echo.Context) error {
	var req withdrawRequest
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

	result, err := h.walletUseCase.Withdraw(c.Request().Context(), usecase.WithdrawInput{
		UserID:          userID,
		WalletID:        req.WalletID,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		logger.Error("Withdrawal failed for user %s: %v", userID, err)
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *WalletHandler) CreatePaymentMethod(c echo.Context) error {
	var req createPaymentMethodRequest
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

	method, err := h.walletUseCase.CreatePaymentMethod(c.Request().Context(), userID, usecase.CreatePaymentMethodInput{
		Type:          req.Type,
		Provider:      req.Provider,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, method)
}

func (h *WalletHandler) GetPaymentMethods(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	methods, err := h.walletUseCase.GetPaymentMethods(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, methods)
}

func (h *WalletHandler) DeletePaymentMethod(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	if err := h.walletUseCase.DeletePaymentMethod(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}

func (h *WalletHandler) GetAnalytics(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "month"
	}

	analytics, err := h.walletUseCase.GetAnalytics(c.Request().Context(), period)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, analytics)
}
