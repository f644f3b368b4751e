package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/utils"
	"github.com/MKhiriev/go-team-sync/models"
	"github.com/go-resty/resty/v2"
)

// syncTriggerHeader tells the backend what started the cycle a call belongs to.
const syncTriggerHeader = "X-Sync-Trigger"

type httpAuthority struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	token string
	now   func() time.Time

	logger *logger.Logger
}

// NewHTTPAuthority constructs an HTTP/REST implementation of [RemoteAuthority].
// It validates the base URL from adapterCfg.HTTPAddress, configures the
// underlying HTTP client with the resolved base URL and request timeout, and
// prepares the HMAC hasher used for payload integrity hashes when a hash key
// is configured.
//
// Endpoints, relative to the base URL:
//
//	GET    /api/entities/{type}?since=RFC3339Nano
//	GET    /api/entities/{type}/{id}
//	POST   /api/entities/{type}
//	PUT    /api/entities/{type}/{id}
//	DELETE /api/entities/{type}/{id}?expected_version=N
func NewHTTPAuthority(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ClosableAuthority, error) {
	baseURL := utils.NormalizeBaseURL(adapterCfg.HTTPAddress)
	if baseURL == "" {
		return nil, fmt.Errorf("invalid adapter http address: empty address")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid adapter http address: address must include host")
	}

	a := &httpAuthority{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		token:  normalizeToken(adapterCfg.Token),
		now:    time.Now,
		logger: logger,
	}
	if appCfg.HashKey != "" {
		a.hasher = utils.NewHasher(appCfg.HashKey)
	}

	return a, nil
}

// normalizeToken accepts both a bare token and a full "Bearer <token>" value.
func normalizeToken(token string) string {
	if parsed, err := utils.ParseBearerToken(token); err == nil {
		return parsed
	}
	return strings.TrimSpace(token)
}

// FetchChangedSince implements [RemoteAuthority].
func (h *httpAuthority) FetchChangedSince(ctx context.Context, entityType string, since *time.Time) ([]models.RemoteRecord, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	if since != nil {
		req.SetQueryParam("since", since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Get(collectionPath(entityType))
	if err != nil {
		return nil, fmt.Errorf("fetch changes request: %w: %w", ErrTransient, err)
	}
	if err = mapHTTPError(resp, entityType, ""); err != nil {
		return nil, err
	}

	var changes models.ChangesResponse
	if err = json.Unmarshal(resp.Body(), &changes); err != nil {
		return nil, fmt.Errorf("%w: decode changes response: %w", ErrRemoteSchema, err)
	}
	for i := range changes.Records {
		if changes.Records[i].EntityType == "" {
			changes.Records[i].EntityType = entityType
		}
	}

	h.logger.Debug().
		Str("entity_type", entityType).
		Int("records", len(changes.Records)).
		Msg("fetched remote changes")

	return changes.Records, nil
}

// Fetch implements [RemoteAuthority]. A 404 is reported as (nil, nil).
func (h *httpAuthority) Fetch(ctx context.Context, entityType, id string) (*models.RemoteRecord, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(recordPath(entityType, id))
	if err != nil {
		return nil, fmt.Errorf("fetch record request: %w: %w", ErrTransient, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err = mapHTTPError(resp, entityType, id); err != nil {
		return nil, err
	}

	var record models.RemoteRecord
	if err = json.Unmarshal(resp.Body(), &record); err != nil {
		return nil, fmt.Errorf("%w: decode record response: %w", ErrRemoteSchema, err)
	}
	if record.EntityType == "" {
		record.EntityType = entityType
	}

	return &record, nil
}

// Create implements [RemoteAuthority]. A 409 means the id is already taken.
func (h *httpAuthority) Create(ctx context.Context, entityType, id string, payload json.RawMessage) (models.CreateResult, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.CreateResult{}, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(h.writeRequest(id, payload, nil)).
		Post(collectionPath(entityType))
	if err != nil {
		return models.CreateResult{}, fmt.Errorf("create request: %w: %w", ErrTransient, err)
	}
	if err = mapHTTPError(resp, entityType, id); err != nil {
		return models.CreateResult{}, err
	}

	var result models.CreateResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.CreateResult{}, fmt.Errorf("%w: decode create response: %w", ErrRemoteSchema, err)
	}
	if result.ID == "" {
		result.ID = id
	}

	return result, nil
}

// Update implements [RemoteAuthority].
func (h *httpAuthority) Update(ctx context.Context, entityType, id string, payload json.RawMessage, expectedVersion int64) (int64, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(h.writeRequest(id, payload, &expectedVersion)).
		Put(recordPath(entityType, id))
	if err != nil {
		return 0, fmt.Errorf("update request: %w: %w", ErrTransient, err)
	}
	if err = mapHTTPError(resp, entityType, id); err != nil {
		return 0, err
	}

	var version models.VersionResponse
	if err = json.Unmarshal(resp.Body(), &version); err != nil {
		return 0, fmt.Errorf("%w: decode update response: %w", ErrRemoteSchema, err)
	}

	return version.Version, nil
}

// Delete implements [RemoteAuthority].
func (h *httpAuthority) Delete(ctx context.Context, entityType, id string, expectedVersion int64) error {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetQueryParam("expected_version", strconv.FormatInt(expectedVersion, 10)).
		Delete(recordPath(entityType, id))
	if err != nil {
		return fmt.Errorf("delete request: %w: %w", ErrTransient, err)
	}

	return mapHTTPError(resp, entityType, id)
}

// Close implements [ClosableAuthority]; the HTTP client holds nothing that
// needs releasing.
func (h *httpAuthority) Close() error {
	return nil
}

// authedRequest returns a request carrying the bearer token. A JWT that is
// already expired fails here with ErrUnauthorized, without a round trip.
func (h *httpAuthority) authedRequest(ctx context.Context) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)
	if trigger, ok := utils.GetSyncTriggerFromContext(ctx); ok {
		req.SetHeader(syncTriggerHeader, string(trigger))
	}
	if h.token == "" {
		return req, nil
	}
	if err := utils.CheckTokenExpiry(h.token, h.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	req.SetHeader("Authorization", "Bearer "+h.token)
	return req, nil
}

func (h *httpAuthority) writeRequest(id string, payload json.RawMessage, expectedVersion *int64) models.WriteRequest {
	req := models.WriteRequest{
		ID:              id,
		Payload:         payload,
		ExpectedVersion: expectedVersion,
	}
	if h.hasher != nil {
		req.Hash = h.hasher.SumHex(payload)
	}
	return req
}

func collectionPath(entityType string) string {
	return "/api/entities/" + url.PathEscape(entityType)
}

func recordPath(entityType, id string) string {
	return collectionPath(entityType) + "/" + url.PathEscape(id)
}
