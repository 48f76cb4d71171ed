// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tenants/{tenantID}/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccount)
	})
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		core.BadRequest(w, "tenant ID required")
		return
	}

	var body CreateAccountBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(body); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := ParseRole(body.Role)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	user, err := h.service.Execute(r.Context(), CreateAccountRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		TenantID: tenantID,
		Role:     role,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			core.JSONError(w, core.DuplicateError("email"))
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToAccountResponse(user))
}
