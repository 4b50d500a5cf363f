package apimodel

import (
	"encoding/json"
	"strings"
)

// ErrorResponse is the failure body of the forecast API.
// Detail is a plain string for most errors and a list of validation
// entries for 422 responses.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail,omitempty"`
}

// ValidationDetail is one entry of a 422 detail list.
type ValidationDetail struct {
	Loc  []any  `json:"loc,omitempty"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// NewErrorDetail builds a string detail body.
func NewErrorDetail(detail string) ErrorResponse {
	raw, _ := json.Marshal(detail)
	return ErrorResponse{Detail: raw}
}

// NewValidationErrors builds a list detail body.
func NewValidationErrors(details ...ValidationDetail) ErrorResponse {
	raw, _ := json.Marshal(details)
	return ErrorResponse{Detail: raw}
}

// Message returns a human readable form of Detail, or "" when there is none.
func (e ErrorResponse) Message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []ValidationDetail
	if err := json.Unmarshal(e.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, d := range list {
			if d.Msg != "" {
				msgs = append(msgs, d.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
