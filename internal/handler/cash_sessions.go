package handler

import (
	"net/http"

	"lunapos/internal/apierror"
	"lunapos/internal/dto"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CashSessionsHandler struct{ svc service.CashSessionService }

func NewCashSessionsHandler(svc service.CashSessionService) *CashSessionsHandler {
	return &CashSessionsHandler{svc: svc}
}

// Open godoc
// @Summary      Open a cash session
// @Description  Opens the register for the authenticated operator. One open session per operator.
// @Tags         cash-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenSessionRequest true "Opening float"
// @Success      201  {object} dto.SessionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cash-sessions/open [post]
func (h *CashSessionsHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	opID, ok := operatorID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), opID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary      Close a cash session
// @Description  Reconciles the counted drawer against the expected amount and closes the session. Irreversible.
// @Tags         cash-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Session UUID"
// @Param        body body dto.CloseSessionRequest true "Counted amount"
// @Success      200  {object} dto.SessionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cash-sessions/{id}/close [post]
func (h *CashSessionsHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary godoc
// @Summary      Session cash summary
// @Description  Recomputes drawer totals from the immutable movement stream.
// @Tags         cash-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session UUID"
// @Success      200 {object} dto.SessionSummaryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cash-sessions/{id}/summary [get]
func (h *CashSessionsHandler) Summary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active godoc
// @Summary      Get the operator's open session
// @Tags         cash-sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cash-sessions/active [get]
func (h *CashSessionsHandler) Active(c *gin.Context) {
	opID, ok := operatorID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Active(c.Request.Context(), opID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List cash sessions
// @Tags         cash-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        operator_id query string false "Operator UUID"
// @Param        status      query string false "open | closed"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.SessionListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/cash-sessions [get]
func (h *CashSessionsHandler) List(c *gin.Context) {
	var filter dto.SessionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sessions"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
