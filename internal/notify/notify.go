// Package notify contains push notification channels. Every channel is a no-op
// when it is not configured.
package notify

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// ErrRateLimited is returned when notification was dropped by rate limiter.
var ErrRateLimited = errors.New("notification rate limited")

// withLink appends deep link to message.
func withLink(message, link string) string {
	if link == "" {
		return message
	}
	return message + "\n" + link
}

// checkResponse drains and closes response body and returns error for non-2xx status.
func checkResponse(resp *http.Response) error {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// StatusError is returned when notification endpoint responded with non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "notification endpoint responded with status " + http.StatusText(e.Code)
	}
	return "notification endpoint responded with status " + http.StatusText(e.Code) + ": " + e.Body
}
