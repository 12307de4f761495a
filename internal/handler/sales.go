package handler

import (
	"net/http"

	"lunapos/internal/apierror"
	"lunapos/internal/dto"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Register a new sale
// @Description  Creates an all-or-nothing sale: debits stock, assigns a folio, and records the cash movement.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale detail"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	opID, ok := operatorID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), opID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get one sale with its items
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List sales
// @Description  Returns a paginated list of sales filtered by date, type, and client.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date      query string false "Date YYYY-MM-DD"
// @Param        sale_type query string false "cash | credit"
// @Param        client_id query string false "Client UUID"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.SaleListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
