package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	identitymodels "toursales/internal/identity/models"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/platform/httputil"
)

// IdentityService defines the registry operations the user handler delegates
// to.
type IdentityService interface {
	FindByCedula(ctx context.Context, cedula string) (*identitymodels.User, error)
	FindOrCreate(ctx context.Context, cedula, name, email string) (*identitymodels.User, error)
}

// UserHandler handles the buyer registry endpoints.
type UserHandler struct {
	identity IdentityService
}

func NewUserHandler(identity IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

// Register mounts the user routes on the router.
func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users", h.handleGetByCedula)
	r.Post("/users", h.handleFindOrCreate)
}

func (h *UserHandler) handleGetByCedula(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.FindByCedula(r.Context(), r.URL.Query().Get("cedula"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Cedula string `json:"cedula"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// handleFindOrCreate has find-or-create semantics, not strict create: posting
// an already registered cedula returns the existing buyer untouched.
func (h *UserHandler) handleFindOrCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	user, err := h.identity.FindOrCreate(r.Context(), req.Cedula, req.Name, req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
