package certificate

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/urfu-enjoyers/campuslink/internal/room"
	"github.com/urfu-enjoyers/campuslink/pkg/middleware"
	"github.com/urfu-enjoyers/campuslink/pkg/response"
)

// Handler handles HTTP requests for room completion and public artifact
// retrieval.
type Handler struct {
	service *Service
	certDir string
}

// NewHandler creates a new certificate handler. certDir is the directory
// artifacts are served from.
func NewHandler(service *Service, certDir string) *Handler {
	return &Handler{service: service, certDir: certDir}
}

// ArtifactRoutes returns the public (unauthenticated) artifact routes,
// mounted at /certificates.
func (h *Handler) ArtifactRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{file}", h.Artifact)
	return r
}

// Complete handles POST /rooms/{id}/complete
// @Summary      Complete a room
// @Description  Mark the room completed and issue one certificate per member
// @Tags         certificates
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      200 {object} response.APIResponse{data=CompleteResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /rooms/{id}/complete [post]
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.service.CompleteRoom(r.Context(), roomID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrAlreadyCompleted):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to complete room")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Artifact handles GET /certificates/{file}. Retrieval is public by URL;
// the file name is the stable convention derived from the certificate
// number.
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		response.NotFound(w, "certificate not found")
		return
	}

	filePath := filepath.Join(h.certDir, name)
	if _, err := os.Stat(filePath); err != nil {
		response.NotFound(w, "certificate not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, filePath)
}
