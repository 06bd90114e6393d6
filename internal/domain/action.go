package domain

import (
	"encoding/json"
	"fmt"
)

const (
	ActionEncrypt  = "encrypt"
	ActionObserve  = "observe"
	ActionMean     = "mean"
	ActionShutdown = "shutdown"
)

// ActionRequest is the structured payload of an Execute command.
type ActionRequest struct {
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}

type wireActionRequest struct {
	Action *string  `json:"action"`
	Value  *float64 `json:"value"`
}

// ParseActionRequest decodes an action payload. Unknown fields are ignored;
// a missing or mistyped action or value is an error.
func ParseActionRequest(message string) (ActionRequest, error) {
	var wire wireActionRequest
	if err := json.Unmarshal([]byte(message), &wire); err != nil {
		return ActionRequest{}, fmt.Errorf("%w: %w", ErrMalformedAction, err)
	}
	if wire.Action == nil {
		return ActionRequest{}, fmt.Errorf("%w: missing field \"action\"", ErrMalformedAction)
	}
	if wire.Value == nil {
		return ActionRequest{}, fmt.Errorf("%w: missing field \"value\"", ErrMalformedAction)
	}
	return ActionRequest{Action: *wire.Action, Value: *wire.Value}, nil
}

// ActionResponse is the structured payload carried by a Reply. The zero
// value is the default failed response.
type ActionResponse struct {
	Status        bool    `json:"status"`
	StatusMessage string  `json:"status_message"`
	Value         float64 `json:"value"`
}

// Encode renders the response as the reply payload.
func (r ActionResponse) Encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		// NaN or Inf cannot be represented in JSON.
		data, _ = json.Marshal(ActionResponse{StatusMessage: fmt.Sprintf("failed to encode response: %v", err)})
	}
	return string(data)
}

// DecodeActionResponse parses a reply payload.
func DecodeActionResponse(payload string) (ActionResponse, error) {
	var resp ActionResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return ActionResponse{}, fmt.Errorf("failed to decode action response: %w", err)
	}
	return resp, nil
}
