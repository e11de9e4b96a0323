package locservice

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/usgs-neic/go-locator/internal/logging"
)

// NewRouter registers the engine's single location endpoint on a fresh
// *mux.Router, mirroring LocatorController.java's single-endpoint
// "/ws/locator" controller shape.
func NewRouter(engine *Engine) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws/locator/locate", engine.handleLocate).Methods(http.MethodPost)
	return router
}

func (e *Engine) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := e.Locate(req)
	if err != nil {
		logging.Errorw("locate request failed", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logging.Errorw("failed to encode location result", "error", err)
	}
}
