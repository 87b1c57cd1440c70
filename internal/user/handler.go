package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/urfu-enjoyers/campuslink/pkg/middleware"
	"github.com/urfu-enjoyers/campuslink/pkg/response"
)

// Handler handles HTTP requests for the current identity
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for current-identity endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Me)
	r.Put("/", h.Update)

	return r
}

// Me handles GET /me
// @Summary      Get current identity
// @Description  Return the authenticated user's profile and portfolio
// @Tags         me
// @Produce      json
// @Success      200 {object} response.APIResponse{data=MeResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.AuthMissing(w)
		return
	}

	me, err := h.service.Me(r.Context(), actorID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to load profile")
		return
	}

	response.JSON(w, http.StatusOK, me)
}

// Update handles PUT /me
// @Summary      Update current profile
// @Description  Partially update the authenticated user's profile fields
// @Tags         me
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile fields to update"
// @Success      200 {object} response.APIResponse{data=User}
// @Failure      401 {object} response.APIResponse
// @Router       /me [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.AuthMissing(w)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), actorID, &req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, u)
}
