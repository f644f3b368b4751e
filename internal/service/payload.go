package service

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-team-sync/internal/validators"
)

// payloadID returns the "id" member of a JSON object payload, or "" when it
// is absent.
func payloadID(payload []byte) (string, error) {
	fields, err := payloadFields(payload)
	if err != nil {
		return "", err
	}

	raw, ok := fields["id"]
	if !ok {
		return "", nil
	}
	var id string
	if err = json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("%w: id is not a string", validators.ErrMalformedPayload)
	}
	return id, nil
}

// withEntityID returns a copy of payload whose "id" member is set to id.
func withEntityID(payload []byte, id string) (json.RawMessage, error) {
	fields, err := payloadFields(payload)
	if err != nil {
		return nil, err
	}

	encodedID, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	fields["id"] = encodedID

	return json.Marshal(fields)
}

func payloadFields(payload []byte) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(payload) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", validators.ErrMalformedPayload, err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	return fields, nil
}
