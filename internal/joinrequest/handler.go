package joinrequest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/urfu-enjoyers/campuslink/internal/room"
	"github.com/urfu-enjoyers/campuslink/pkg/middleware"
	"github.com/urfu-enjoyers/campuslink/pkg/response"
)

// Handler handles HTTP requests for join-request operations. Its routes are
// attached under the room router by the caller.
type Handler struct {
	service *Service
}

// NewHandler creates a new join-request handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /rooms/{id}/join
// @Summary      Submit a join request
// @Description  File a pending membership request for the room; the owner is notified best-effort
// @Tags         requests
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      201 {object} response.APIResponse{data=SubmitResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /rooms/{id}/join [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.AuthMissing(w)
		return
	}

	roomID, err := room.RoomID(r)
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	requestID, err := h.service.Submit(r.Context(), roomID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrRoomClosed), errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrAlreadyRequested):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to submit join request")
		}
		return
	}

	response.JSON(w, http.StatusCreated, &SubmitResponse{RequestID: requestID})
}

// Decide handles POST /rooms/{id}/requests/{requestID}
// @Summary      Decide a join request
// @Description  Approve or reject a pending request; only the room owner may decide
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id path int true "Room ID"
// @Param        requestID path int true "Request ID"
// @Param        request body DecideRequest true "Decision"
// @Success      200 {object} response.APIResponse{data=DecideResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /rooms/{id}/requests/{requestID} [post]
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.AuthMissing(w)
		return
	}

	roomID, err := room.RoomID(r)
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Decide(r.Context(), roomID, requestID, actorID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadAction):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrRequestNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrAlreadyProcessed):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to decide join request")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
