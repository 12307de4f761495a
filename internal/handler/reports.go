package handler

import (
	"net/http"

	"lunapos/internal/apierror"
	"lunapos/internal/dto"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// IncomeStatement godoc
// @Summary      Income statement for a date range
// @Description  Projects tender events through settlement: income counts money on its availability date, net of commission. Pending deferred settlements are listed separately.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start       query string true  "Start date YYYY-MM-DD (inclusive)"
// @Param        end         query string true  "End date YYYY-MM-DD (inclusive)"
// @Param        granularity query string false "day | week | month"
// @Success      200 {object} dto.IncomeStatementResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/reports/income-statement [get]
func (h *ReportsHandler) IncomeStatement(c *gin.Context) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("start and end are required as YYYY-MM-DD"))
		return
	}
	resp, err := h.svc.IncomeStatement(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
