package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-team-sync/internal/service"
	"github.com/MKhiriev/go-team-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrUnknownEntityType: http.StatusBadRequest,
	service.ErrInvalidOperation:  http.StatusBadRequest,
	service.ErrRecordNotFound:    http.StatusNotFound,

	store.ErrDeadLetterNotFound: http.StatusNotFound,
	store.ErrInvalidMutation:    http.StatusBadRequest,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
