package handler

import (
	"net/http"

	"lunapos/internal/apierror"
	"lunapos/internal/dto"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpensesHandler struct{ svc service.ExpenseService }

func NewExpensesHandler(svc service.ExpenseService) *ExpensesHandler {
	return &ExpensesHandler{svc: svc}
}

// Create godoc
// @Summary      Register an expense
// @Description  Settled expenses start with zero outstanding balance; pending ones carry the full amount.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateExpenseRequest true "Expense detail"
// @Success      201  {object} dto.ExpenseResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/expenses [post]
func (h *ExpensesHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegisterPayment godoc
// @Summary      Register a partial payment against a pending expense
// @Description  Reduces the outstanding balance atomically. Overpayment is rejected.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegisterExpensePaymentRequest true "Payment detail"
// @Success      200  {object} dto.ExpenseResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/expenses/payments [post]
func (h *ExpensesHandler) RegisterPayment(c *gin.Context) {
	var req dto.RegisterExpensePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPayment(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "settled | pending"
// @Param        category query string false "Category filter"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.ExpenseListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/expenses [get]
func (h *ExpensesHandler) List(c *gin.Context) {
	var filter dto.ExpenseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list expenses"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
