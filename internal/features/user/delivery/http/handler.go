package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "venture-match-backend/internal/common/errors"
	"venture-match-backend/internal/common/middleware"
	"venture-match-backend/internal/features/user/models"
	"venture-match-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.GET("/me/role", h.getRole)
		users.POST("/me/role", h.assignRole)
		users.PUT("/me/profile/investor", h.upsertInvestorProfile)
		users.PUT("/me/profile/entrepreneur", h.upsertEntrepreneurProfile)
		users.GET("/:id", h.getUser)
	}
}

// @Summary Get current user
// @Description Get or create the current user from the identity provider token.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse "User data"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid token"
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	user, err := h.service.GetOrCreateUser(c.Request.Context(), identity.Subject, defaults(identity))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Get current user's role
// @Description Returns the assigned role, or null when no role has been chosen yet.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.RoleResponse "Role, possibly null"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid token"
// @Router /users/me/role [get]
func (h *UserHandler) getRole(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	role, err := h.service.GetRole(c.Request.Context(), identity.Subject)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.RoleResponse{Role: role})
}

// @Summary Assign role
// @Description Assigns the caller's role exactly once. INVESTOR or ENTREPRENEUR.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param role body models.AssignRoleInput true "Requested role"
// @Success 200 {object} models.RoleResponse "Assigned role"
// @Failure 400 {object} middleware.ErrorResponse "Invalid role value"
// @Failure 409 {object} middleware.ErrorResponse "Role already assigned"
// @Router /users/me/role [post]
func (h *UserHandler) assignRole(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	var input models.AssignRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("role", err.Error()))
		return
	}

	role, err := h.service.AssignRole(c.Request.Context(), identity.Subject, input.Role, defaults(identity))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.RoleResponse{Role: &role})
}

// @Summary Upsert investor profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body models.InvestorProfileInput true "Investor profile"
// @Success 200 {object} models.UserResponse "Updated user"
// @Failure 400 {object} middleware.ErrorResponse "Role not assigned or mismatched"
// @Router /users/me/profile/investor [put]
func (h *UserHandler) upsertInvestorProfile(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	var input models.InvestorProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.New(apperrors.ErrCodeBadRequest, err.Error()))
		return
	}

	user, err := h.service.UpsertInvestorProfile(c.Request.Context(), identity.Subject, input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Upsert entrepreneur profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body models.EntrepreneurProfileInput true "Entrepreneur profile"
// @Success 200 {object} models.UserResponse "Updated user"
// @Failure 400 {object} middleware.ErrorResponse "Role not assigned or mismatched"
// @Router /users/me/profile/entrepreneur [put]
func (h *UserHandler) upsertEntrepreneurProfile(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.Error(apperrors.NewUnauthenticatedError("bearer token required"))
		return
	}

	var input models.EntrepreneurProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.New(apperrors.ErrCodeBadRequest, err.Error()))
		return
	}

	user, err := h.service.UpsertEntrepreneurProfile(c.Request.Context(), identity.Subject, input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Get user by ID
// @Description Public profile of any platform member.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse "User data"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) getUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrCodeBadRequest, "Invalid user ID format"))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func defaults(identity middleware.Identity) models.ProfileDefaults {
	return models.ProfileDefaults{
		Name:     identity.Name,
		Email:    identity.Email,
		ImageURL: identity.ImageURL,
	}
}
