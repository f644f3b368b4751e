package http

import (
	"net/http"

	"github.com/MKhiriev/go-team-sync/internal/utils"
)

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.status.BuildInfo(), http.StatusOK)
}
