package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const defaultListLimit = 50

// UserAdminStore is the slice of the user store the admin API drives.
type UserAdminStore interface {
	ports.UserStore
	ports.UserEmailStore
	ports.UserRoleStore
	ports.UserClaimStore
	ports.UserLockoutStore
	ports.QueryableUserStore
}

// UserHandler exposes user administration endpoints.
type UserHandler struct {
	store      UserAdminStore
	roles      ports.RoleFinder
	normalizer ports.LookupNormalizer
}

func NewUserHandler(store UserAdminStore, roles ports.RoleFinder, normalizer ports.LookupNormalizer) *UserHandler {
	return &UserHandler{store: store, roles: roles, normalizer: normalizer}
}

// List handles GET /v1/users. At most one filter applies, checked in the
// order email, role, claim; without one the full collection is paged.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email        query     string  false  "Exact email (case-insensitive)"
// @Param        role         query     string  false  "Role name"
// @Param        claim_type   query     string  false  "Claim type (requires claim_value)"
// @Param        claim_value  query     string  false  "Claim value"
// @Param        offset       query     int     false  "Offset for unfiltered listing"
// @Param        limit        query     int     false  "Page size for unfiltered listing"
// @Success      200          {object}  userListResponse
// @Failure      401          {object}  errorResponse
// @Failure      403          {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		users []*domain.User
		err   error
	)
	switch {
	case c.QueryParam("email") != "":
		var u *domain.User
		u, err = h.store.FindByEmail(ctx, h.normalizer.NormalizeEmail(c.QueryParam("email")))
		if u != nil {
			users = []*domain.User{u}
		}
	case c.QueryParam("role") != "":
		users, err = h.store.GetUsersInRole(ctx, h.normalizer.NormalizeName(c.QueryParam("role")))
	case c.QueryParam("claim_type") != "":
		users, err = h.store.GetUsersForClaim(ctx, domain.Claim{
			Type:  c.QueryParam("claim_type"),
			Value: c.QueryParam("claim_value"),
		})
	default:
		var q *domain.UserQuery
		q, err = h.store.Users(ctx)
		if q != nil {
			users = page(q.Slice(), queryInt(c, "offset", 0), queryInt(c, "limit", defaultListLimit))
		}
	}
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}

	return c.JSON(http.StatusOK, userListResponse{Users: users, Count: len(users)})
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:id. Callers cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	subject, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if subject == c.Param("id") {
		return domain.ErrForbidden
	}

	u, err := h.load(c)
	if err != nil {
		return err
	}
	result, err := h.store.Delete(c.Request().Context(), u)
	if err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddRole handles POST /v1/users/:id/roles.
//
// @Summary      Add a user to a role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      roleMembershipRequest  true  "Role"
// @Success      200   {object}  rolesResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/roles [post]
func (h *UserHandler) AddRole(c echo.Context) error {
	var req roleMembershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	normalized := h.normalizer.NormalizeName(req.Role)
	// The store ignores unknown roles; surface them as 404 here.
	if _, err := h.roles.FindRoleByName(ctx, normalized); err != nil {
		return err
	}

	u, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.store.AddToRole(ctx, u, normalized); err != nil {
		return err
	}
	return h.respondRoles(c, u)
}

// RemoveRole handles DELETE /v1/users/:id/roles/:role.
//
// @Summary      Remove a user from a role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "User id"
// @Param        role  path      string  true  "Role name"
// @Success      200   {object}  rolesResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/roles/{role} [delete]
func (h *UserHandler) RemoveRole(c echo.Context) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.store.RemoveFromRole(c.Request().Context(), u, h.normalizer.NormalizeName(c.Param("role"))); err != nil {
		return err
	}
	return h.respondRoles(c, u)
}

// AddClaim handles POST /v1/users/:id/claims.
//
// @Summary      Add a claim to a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "User id"
// @Param        body  body      claimRequest  true  "Claim"
// @Success      200   {object}  claimsResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/claims [post]
func (h *UserHandler) AddClaim(c echo.Context) error {
	var req claimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	u, err := h.load(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.store.AddClaims(ctx, u, domain.Claim{Type: req.Type, Value: req.Value}); err != nil {
		return err
	}
	claims, err := h.store.GetClaims(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claimsResponse{Claims: claims})
}

// Lock handles PUT /v1/users/:id/lockout.
//
// @Summary      Lock a user out until a point in time
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User id"
// @Param        body  body      lockoutRequest  true  "Lockout end"
// @Success      200   {object}  lockoutResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/lockout [put]
func (h *UserHandler) Lock(c echo.Context) error {
	var req lockoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	u, err := h.load(c)
	if err != nil {
		return err
	}
	until := req.Until
	if err := h.store.SetLockoutEndDate(c.Request().Context(), u, &until); err != nil {
		return err
	}
	return h.respondLockout(c, u)
}

// Unlock handles DELETE /v1/users/:id/lockout. It clears the lockout end and
// resets the failed attempt counter.
//
// @Summary      Clear a user's lockout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  lockoutResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/lockout [delete]
func (h *UserHandler) Unlock(c echo.Context) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.store.SetLockoutEndDate(ctx, u, nil); err != nil {
		return err
	}
	if err := h.store.ResetAccessFailedCount(ctx, u); err != nil {
		return err
	}
	return h.respondLockout(c, u)
}

// load resolves the :id path parameter to a stored user.
func (h *UserHandler) load(c echo.Context) (*domain.User, error) {
	u, err := h.store.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (h *UserHandler) respondRoles(c echo.Context, u *domain.User) error {
	roles, err := h.store.GetRoles(c.Request().Context(), u)
	if err != nil {
		return err
	}
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(http.StatusOK, rolesResponse{Roles: roles})
}

func (h *UserHandler) respondLockout(c echo.Context, u *domain.User) error {
	ctx := c.Request().Context()
	end, err := h.store.GetLockoutEndDate(ctx, u)
	if err != nil {
		return err
	}
	count, err := h.store.GetAccessFailedCount(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lockoutResponse{LockoutEnd: end, AccessFailedCount: count})
}

func page(users []*domain.User, offset, limit int) []*domain.User {
	if offset >= len(users) {
		return []*domain.User{}
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end]
}

func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return fallback
	}
	if name == "limit" && v == 0 {
		return fallback
	}
	return v
}

