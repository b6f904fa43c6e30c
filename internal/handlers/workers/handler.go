package workers

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/handlers/response"
)

// ApiHandler serves the worker registry over the operational API.
type ApiHandler struct {
	PresenceRepo secondary.PresenceRepository
}

func NewHandler(presenceRepo secondary.PresenceRepository) *ApiHandler {
	return &ApiHandler{
		PresenceRepo: presenceRepo,
	}
}

// Register mounts the routes; paths are relative to the caller's router.
func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/workers", api.GetWorkers).Methods("GET")
	r.HandleFunc("/workers/{workerId}", api.GetWorker).Methods("GET")
}

func (api *ApiHandler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := api.PresenceRepo.GetAllWorkers(r.Context())
	if err != nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Failed to get workers",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}

	response.WriteSuccess(w, map[string]interface{}{"workers": workers})
}

func (api *ApiHandler) GetWorker(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["workerId"]

	worker, err := api.PresenceRepo.GetWorker(r.Context(), workerID)
	if err != nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Failed to get worker",
			StatusCode: http.StatusInternalServerError,
		})
		return
	}
	if worker == nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Worker not found",
			StatusCode: http.StatusNotFound,
		})
		return
	}

	response.WriteSuccess(w, worker)
}
