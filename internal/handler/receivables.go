package handler

import (
	"net/http"

	"lunapos/internal/apierror"
	"lunapos/internal/dto"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceivablesHandler struct{ svc service.ReceivableService }

func NewReceivablesHandler(svc service.ReceivableService) *ReceivablesHandler {
	return &ReceivablesHandler{svc: svc}
}

// RegisterPayment godoc
// @Summary      Register an abono against a credit sale
// @Description  Reduces the outstanding balance atomically. Overpayment is rejected.
// @Tags         receivables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegisterPaymentRequest true "Payment detail"
// @Success      201  {object} dto.PaymentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/receivables/payments [post]
func (h *ReceivablesHandler) RegisterPayment(c *gin.Context) {
	var req dto.RegisterPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPayment(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListOutstanding godoc
// @Summary      List outstanding receivables
// @Description  Credit sales with a balance greater than zero, optionally filtered by client.
// @Tags         receivables
// @Produce      json
// @Security     BearerAuth
// @Param        client_id query string false "Client UUID"
// @Success      200 {array} dto.ReceivableResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/receivables [get]
func (h *ReceivablesHandler) ListOutstanding(c *gin.Context) {
	var clientID *uuid.UUID
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid client_id"))
			return
		}
		clientID = &id
	}
	resp, err := h.svc.ListOutstanding(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list receivables"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPayments godoc
// @Summary      List payments of one credit sale
// @Tags         receivables
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {array} dto.PaymentResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/receivables/{id}/payments [get]
func (h *ReceivablesHandler) ListPayments(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.ListPayments(c.Request.Context(), saleID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
