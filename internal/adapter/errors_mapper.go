package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-team-sync/models"
	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response, entityType, id string) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case http.StatusConflict, http.StatusPreconditionFailed:
		return conflictFromBody(resp.Body(), entityType, id)
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", ErrBadGateway, body)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, body)
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, resp.StatusCode(), body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("%w: http %d: %s", ErrTransient, resp.StatusCode(), body)
		}
		return fmt.Errorf("%w: http %d: %s", ErrBadRequest, resp.StatusCode(), body)
	}
}

// conflictFromBody builds a *ConflictError, attaching the remote record when
// the backend sent it back with the 409.
func conflictFromBody(body []byte, entityType, id string) error {
	conflict := &ConflictError{EntityType: entityType, ID: id}

	var remote models.RemoteRecord
	if err := json.Unmarshal(body, &remote); err == nil && remote.ID != "" {
		if remote.EntityType == "" {
			remote.EntityType = entityType
		}
		conflict.Remote = &remote
		return conflict
	}

	conflict.Detail = strings.TrimSpace(string(body))
	return conflict
}
