package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

const maxImportBatch = 1000

// ImportDispatcher is the interface the handler uses to enqueue imports.
type ImportDispatcher interface {
	EnqueueBatch(batch []ports.UserImportInput) (accepted int, err error)
}

// ImportHandler handles bulk user provisioning.
type ImportHandler struct {
	dispatcher ImportDispatcher
}

// NewImportHandler creates an ImportHandler backed by the given dispatcher.
func NewImportHandler(dispatcher ImportDispatcher) *ImportHandler {
	return &ImportHandler{dispatcher: dispatcher}
}

// Import handles POST /v1/users/import. Users are provisioned asynchronously;
// the batch is validated up front and accepted with 202.
//
// @Summary      Bulk import users
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []importUserRequest  true  "Users to provision"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/users/import [post]
func (h *ImportHandler) Import(c echo.Context) error {
	var reqs []importUserRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}
	if len(reqs) > maxImportBatch {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("batch exceeds %d users", maxImportBatch))
	}

	inputs := make([]ports.UserImportInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("user[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toImportInput(req))
	}

	accepted, err := h.dispatcher.EnqueueBatch(inputs)
	if errors.Is(err, domain.ErrImportUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			fmt.Sprintf("import queue unavailable, %d of %d users accepted", accepted, len(inputs)))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "users accepted",
		Count:   len(inputs),
	})
}

// toImportInput maps the HTTP request to the service DTO.
func toImportInput(r importUserRequest) ports.UserImportInput {
	return ports.UserImportInput{
		UserName:    r.UserName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
		Roles:       r.Roles,
		Claims: lo.Map(r.Claims, func(cl importClaimRequest, _ int) ports.ClaimInput {
			return ports.ClaimInput{Type: cl.Type, Value: cl.Value}
		}),
	}
}
