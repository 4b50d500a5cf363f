package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/forecast-dashboard/apimodel"
	ierrors "github.com/jrsteele09/forecast-dashboard/internal/errors"
)

// Kind classifies a failed session request.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindUnauthorized
	KindValidation
	KindServiceUnavailable
	KindNetwork
	KindMalformedResponse
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindInvalidCredentials: "invalid_credentials",
	KindUnauthorized:       "unauthorized",
	KindValidation:         "validation_error",
	KindServiceUnavailable: "service_unavailable",
	KindNetwork:            "network_error",
	KindMalformedResponse:  "malformed_response",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[KindUnknown]
}

// Default messages, used when the server gives no detail.
var defaultMessages = map[Kind]string{
	KindInvalidCredentials: "Incorrect username or password",
	KindUnauthorized:       "Your session is not authorized, please sign in again",
	KindValidation:         "The sign-in request was rejected as invalid",
	KindServiceUnavailable: "The forecast service is temporarily unavailable",
	KindNetwork:            "Unable to reach the forecast service",
	KindMalformedResponse:  "The server response did not include an access token",
	KindUnknown:            "Sign-in failed, please try again",
}

// DefaultMessage returns the message shown for k when the server sent none.
func DefaultMessage(k Kind) string {
	return defaultMessages[k]
}

// Error is a classified session failure. It is recorded on the Store and
// never returned from Store operations.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when no response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match an Error against the shared sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ierrors.ErrInvalidCredentials:
		return e.Kind == KindInvalidCredentials
	case ierrors.ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	case ierrors.ErrNotAuthenticated:
		return e.Kind == KindUnauthorized
	}
	return false
}

func newError(kind Kind, status int, detail string, err error) *Error {
	msg := detail
	if msg == "" {
		msg = DefaultMessage(kind)
	}
	return &Error{Kind: kind, Status: status, Message: msg, Err: err}
}

// kindForStatus maps an HTTP status to its category.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindInvalidCredentials
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusServiceUnavailable:
		return KindServiceUnavailable
	default:
		return KindUnknown
	}
}

// classifyResponse builds the Error for a non-2xx response. The server's
// detail wins over the category default.
func classifyResponse(status int, body []byte) *Error {
	var er apimodel.ErrorResponse
	detail := ""
	if len(body) > 0 && json.Unmarshal(body, &er) == nil {
		detail = er.Message()
	}
	return newError(kindForStatus(status), status, detail, errors.New(http.StatusText(status)))
}

// classifyTransport builds the Error for a request that got no response.
func classifyTransport(err error) *Error {
	return newError(KindNetwork, 0, "", err)
}

func malformedResponse(status int, err error) *Error {
	if err == nil {
		err = ierrors.ErrMalformedResponse
	}
	return newError(KindMalformedResponse, status, "", err)
}
