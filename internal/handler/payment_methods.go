package handler

import (
	"net/http"

	"lunapos/internal/apierror"
	"lunapos/internal/repository"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentMethodsHandler exposes the externally owned payment-method catalog
// read model, plus an explicit cache invalidation hook for when the catalog
// is edited upstream.
type PaymentMethodsHandler struct {
	repo    repository.PaymentMethodRepository
	catalog service.MethodCatalog
}

func NewPaymentMethodsHandler(repo repository.PaymentMethodRepository, catalog service.MethodCatalog) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{repo: repo, catalog: catalog}
}

// List godoc
// @Summary      List active payment methods
// @Tags         payment-methods
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.PaymentMethod
// @Router       /v1/payment-methods [get]
func (h *PaymentMethodsHandler) List(c *gin.Context) {
	methods, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list payment methods"))
		return
	}
	c.JSON(http.StatusOK, methods)
}

// InvalidateCache godoc
// @Summary      Invalidate the payment-method cache
// @Description  Forces the next settlement projection to reload the catalog.
// @Tags         payment-methods
// @Security     BearerAuth
// @Success      204
// @Router       /v1/payment-methods/cache [delete]
func (h *PaymentMethodsHandler) InvalidateCache(c *gin.Context) {
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}
