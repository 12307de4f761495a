package handler

import (
	"net/http"
	"time"

	"lunapos/internal/apierror"
	"lunapos/internal/dto"
	"lunapos/internal/model"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Credit godoc
// @Summary      Credit stock
// @Description  Increments a stock entry (restock / adjustment), creating it when absent.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreditStockRequest true "Credit detail"
// @Success      200  {object} dto.StockEntryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/stock/credit [post]
func (h *StockHandler) Credit(c *gin.Context) {
	var req dto.CreditStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	entry, err := h.svc.Credit(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryToResponse(entry))
}

// Transfer godoc
// @Summary      Transfer stock between entries
// @Description  Debits the source entry and credits the destination. A failed credit compensates the debit.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferStockRequest true "Transfer detail"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/stock/transfer [post]
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Transfer(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMovements godoc
// @Summary      List stock movements
// @Description  Returns the immutable audit trail of stock changes, newest first.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        stock_entry_id query string false "Stock entry UUID"
// @Param        kind           query string false "sale | credit | transfer_out | transfer_in | compensation"
// @Param        page           query int    false "Page (default 1)"
// @Param        limit          query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.StockMovementListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	movements, total, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list movements"))
		return
	}
	data := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		data = append(data, movementToResponse(&movements[i]))
	}
	c.JSON(http.StatusOK, dto.StockMovementListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func entryToResponse(e *model.StockEntry) dto.StockEntryResponse {
	resp := dto.StockEntryResponse{
		ID:        e.ID.String(),
		ProductID: e.ProductID.String(),
		Quantity:  e.Quantity,
	}
	if e.SizeID != nil {
		s := e.SizeID.String()
		resp.SizeID = &s
	}
	if e.WarehouseID != nil {
		w := e.WarehouseID.String()
		resp.WarehouseID = &w
	}
	return resp
}

func movementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID.String(),
		StockEntryID:   m.StockEntryID.String(),
		Kind:           m.Kind,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
