package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "venture-match-backend/internal/common/errors"
	"venture-match-backend/internal/common/middleware"
	"venture-match-backend/internal/features/connection/models"
	"venture-match-backend/internal/features/connection/service"
	usermodels "venture-match-backend/internal/features/user/models"
)

type ConnectionHandler struct {
	service service.ConnectionService
}

func NewConnectionHandler(service service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		service: service,
	}
}

func (h *ConnectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	connections := router.Group("/connections")
	{
		connections.POST("", h.sendRequest)
		connections.PUT("/:id", h.respondToRequest)
		connections.DELETE("/:id", h.deleteRequest)
		connections.GET("/sent", h.listSent)
		connections.GET("/received", h.listReceived)
		connections.GET("/candidates", h.listCandidates)
	}
}

// @Summary Send connection request
// @Description Creates a PENDING request from the caller to another user.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SendRequestInput true "Receiver"
// @Success 201 {object} models.ConnectionResponse "Created request"
// @Failure 400 {object} middleware.ErrorResponse "Self request or bad receiver id"
// @Failure 404 {object} middleware.ErrorResponse "Receiver not found"
// @Failure 409 {object} middleware.ErrorResponse "Request already exists"
// @Router /connections [post]
func (h *ConnectionHandler) sendRequest(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	var input models.SendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("receiver_id", err.Error()))
		return
	}

	request, err := h.service.SendRequest(c.Request.Context(), identity.Subject, input.ReceiverID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// @Summary Respond to connection request
// @Description Receiver-only decision: ACCEPTED or REJECTED.
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param status body models.RespondInput true "Decision"
// @Success 200 {object} models.ConnectionResponse "Updated request"
// @Failure 400 {object} middleware.ErrorResponse "Invalid status value"
// @Failure 403 {object} middleware.ErrorResponse "Caller is not the receiver"
// @Failure 404 {object} middleware.ErrorResponse "Request not found"
// @Failure 409 {object} middleware.ErrorResponse "Request already decided"
// @Router /connections/{id} [put]
func (h *ConnectionHandler) respondToRequest(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrCodeBadRequest, "Invalid request ID format"))
		return
	}

	var input models.RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("status", err.Error()))
		return
	}

	request, err := h.service.RespondToRequest(c.Request.Context(), identity.Subject, requestID, input.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// @Summary Delete connection request
// @Description Removes a request. Only its sender or receiver may do this.
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 204 "Deleted"
// @Failure 403 {object} middleware.ErrorResponse "Caller is not a party to the request"
// @Failure 404 {object} middleware.ErrorResponse "Request not found"
// @Router /connections/{id} [delete]
func (h *ConnectionHandler) deleteRequest(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrCodeBadRequest, "Invalid request ID format"))
		return
	}

	if err := h.service.DeleteRequest(c.Request.Context(), identity.Subject, requestID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List sent requests
// @Description Caller's outgoing requests enriched with the receiver's profile.
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email substring"
// @Param role query string false "Receiver role filter" Enums(INVESTOR, ENTREPRENEUR)
// @Success 200 {array} models.ConnectionResponse "Requests"
// @Router /connections/sent [get]
func (h *ConnectionHandler) listSent(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	requests, err := h.service.ListSent(c.Request.Context(), identity.Subject, filterFromQuery(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// @Summary List received requests
// @Description Caller's incoming requests enriched with the sender's profile.
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email substring"
// @Param role query string false "Sender role filter" Enums(INVESTOR, ENTREPRENEUR)
// @Success 200 {array} models.ConnectionResponse "Requests"
// @Router /connections/received [get]
func (h *ConnectionHandler) listReceived(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	requests, err := h.service.ListReceived(c.Request.Context(), identity.Subject, filterFromQuery(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// @Summary List connection candidates
// @Description All users excluding the caller and anyone already linked to them.
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} usermodels.UserResponse "Candidate users"
// @Router /connections/candidates [get]
func (h *ConnectionHandler) listCandidates(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	var candidates []*usermodels.UserResponse
	candidates, err := h.service.ListCandidates(c.Request.Context(), identity.Subject)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, candidates)
}

func filterFromQuery(c *gin.Context) models.ListFilter {
	return models.ListFilter{
		SearchTerm: c.Query("search"),
		Role:       c.Query("role"),
	}
}
