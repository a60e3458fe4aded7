package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jamiljuma2/assignhub-backend/internal/dto"
	"github.com/jamiljuma2/assignhub-backend/internal/http/handlers/common"
	"github.com/jamiljuma2/assignhub-backend/internal/mpesa"
	"github.com/jamiljuma2/assignhub-backend/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// GetWallet GET /payments/wallet
func (h *PaymentHandler) GetWallet(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	wallet, err := h.payments.Wallet(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// TopUp POST /payments/topup
func (h *PaymentHandler) TopUp(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.TopUpRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.payments.TopUp(c.Request.Context(), userID, req.Amount, req.PhoneNumber)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// Callback POST /payments/mpesa/callback
// Вызывается шлюзом, без авторизации пользователя.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req dto.MpesaCallbackRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	err := h.payments.HandleCallback(c.Request.Context(), &mpesa.CallbackPayload{
		InvoiceNumber: req.InvoiceNumber,
		ResultCode:    req.ResultCode,
		ResultDesc:    req.ResultDesc,
		Amount:        req.Amount,
		ReceiptNumber: req.ReceiptNumber,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "обработано", nil)
}

// History GET /payments/history
func (h *PaymentHandler) History(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	payments, err := h.payments.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: payments, Limit: limit, Offset: offset})
}
