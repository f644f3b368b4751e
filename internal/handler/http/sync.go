package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/service"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/models"
)

func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	status, err := h.status.Snapshot(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getSyncStatus").Msg("error building sync status")
		http.Error(w, "error building sync status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

// refreshSync runs a manual cycle and answers with its result. A cycle that
// is already in flight is reported with 409 and Started=false.
func (h *Handler) refreshSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	// a client hanging up must not cut the cycle short
	ctx := context.WithoutCancel(r.Context())
	result := h.job.Refresh(ctx)

	log.Info().
		Str("func", "*Handler.refreshSync").
		Bool("started", result.Started).
		Str("status", string(result.Status)).
		Msg("manual sync requested")

	code := http.StatusOK
	if !result.Started {
		code = http.StatusConflict
	}
	utils.WriteJSON(w, result, code)
}

func (h *Handler) getQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	queue, err := h.status.Queue(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getQueue").Msg("error listing mutation queue")
		http.Error(w, "error listing mutation queue", statusFromError(err))
		return
	}

	utils.WriteJSON(w, queue, http.StatusOK)
}

func (h *Handler) getDeadLetters(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	letters, err := h.status.DeadLetters(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getDeadLetters").Msg("error listing dead letters")
		http.Error(w, "error listing dead letters", statusFromError(err))
		return
	}

	utils.WriteJSON(w, letters, http.StatusOK)
}

func (h *Handler) requeueDeadLetter(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "id")
	if !models.IsKnownEntityType(entityType) {
		err := fmt.Errorf("%w: %q", service.ErrUnknownEntityType, entityType)
		log.Err(err).Str("func", "*Handler.requeueDeadLetter").Msg("invalid entity type")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	entry, err := h.status.Requeue(r.Context(), entityType, entityID)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.requeueDeadLetter").
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("error requeueing dead letter")
		http.Error(w, "error requeueing dead letter", statusFromError(err))
		return
	}

	// the engine picks the entry up on the next cycle; ask for it now
	h.job.Trigger(models.TriggerManual)

	utils.WriteJSON(w, entry, http.StatusOK)
}
