package rooms

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/handlers/response"
)

const defaultSessionLimit = 50

// ApiHandler serves room occupation history over the operational API.
type ApiHandler struct {
	SessionRepo secondary.SessionRepository
}

func NewHandler(sessionRepo secondary.SessionRepository) *ApiHandler {
	return &ApiHandler{
		SessionRepo: sessionRepo,
	}
}

// Register mounts the routes; paths are relative to the caller's router.
func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/rooms/sessions", api.GetRecentSessions).Methods("GET")
}

func (api *ApiHandler) GetRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.WriteError(w, response.ErrorMessage{
				Message:    "Invalid limit",
				StatusCode: http.StatusBadRequest,
			})
			return
		}
		limit = parsed
	}

	sessions, err := api.SessionRepo.GetRecentSessions(r.Context(), limit)
	if err != nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Failed to get room sessions",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}

	response.WriteSuccess(w, map[string]interface{}{"sessions": sessions})
}
