package room

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/urfu-enjoyers/campuslink/pkg/middleware"
	"github.com/urfu-enjoyers/campuslink/pkg/response"
)

// Handler handles HTTP requests for room operations
type Handler struct {
	service *Service
}

// NewHandler creates a new room handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for room endpoints. The join-request and
// completion routes are attached by the caller so those features keep their
// own handlers.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Detail)

	return r
}

// RoomID parses the {id} URL parameter shared by all room subroutes.
func RoomID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// List handles GET /rooms
// @Summary      List open rooms
// @Description  Return rooms with status open or active, newest first
// @Tags         rooms
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Room}
// @Failure      401 {object} response.APIResponse
// @Router       /rooms [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListOpen(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list rooms")
		return
	}

	response.JSON(w, http.StatusOK, rooms)
}

// Create handles POST /rooms
// @Summary      Create a room
// @Description  Create a room; the creator becomes owner and first member
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body CreateRoomRequest true "Room creation request"
// @Success      201 {object} response.APIResponse{data=Room}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /rooms [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.AuthMissing(w)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	rm, err := h.service.Create(r.Context(), actorID, &req)
	if err != nil {
		if errors.Is(err, ErrTitleTooShort) {
			response.Validation(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create room")
		return
	}

	response.JSON(w, http.StatusCreated, rm)
}

// Detail handles GET /rooms/{id}
// @Summary      Get room detail
// @Description  Return the room, its members and, for the owner, the pending request queue
// @Tags         rooms
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      200 {object} response.APIResponse{data=DetailResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /rooms/{id} [get]
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.AuthMissing(w)
		return
	}

	roomID, err := RoomID(r)
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	detail, err := h.service.Detail(r.Context(), roomID, actorID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get room")
		return
	}

	response.JSON(w, http.StatusOK, detail)
}
