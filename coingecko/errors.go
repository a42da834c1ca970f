package coingecko

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrBaseURLRequired is returned by New when no base origin is configured
	ErrBaseURLRequired = errors.New("coingecko: base URL required")
)

// UpstreamError is the normalized failure for every non-success response.
// Message is the upstream JSON "error" field when present, otherwise the
// standard reason phrase for Status.
type UpstreamError struct {
	Status   int
	Message  string
	Endpoint string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API Error: %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

func newUpstreamError(endpoint string, resp *http.Response, body []byte) *UpstreamError {
	var eb errorBody
	msg := ""
	if err := json.Unmarshal(body, &eb); err == nil {
		msg = eb.Error
	}
	if msg == "" {
		msg = reasonPhrase(resp)
	}
	return &UpstreamError{Status: resp.StatusCode, Message: msg, Endpoint: endpoint}
}

// reasonPhrase returns the standard text for the status code, falling back to
// whatever the status line carried for codes outside the registry.
func reasonPhrase(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

// StatusCode returns the upstream status carried by err, if any
func StatusCode(err error) (int, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status, true
	}
	return 0, false
}
