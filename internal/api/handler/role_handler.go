package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// RoleHandler manages the role catalogue.
type RoleHandler struct {
	roles      ports.RoleRepository
	normalizer ports.LookupNormalizer
}

func NewRoleHandler(roles ports.RoleRepository, normalizer ports.LookupNormalizer) *RoleHandler {
	return &RoleHandler{roles: roles, normalizer: normalizer}
}

// Create handles POST /v1/roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role"
// @Success      201   {object}  domain.Role
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, err := h.roles.Create(c.Request().Context(), &domain.Role{
		Name:           req.Name,
		NormalizedName: h.normalizer.NormalizeName(req.Name),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}
