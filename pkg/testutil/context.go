package testutil

import (
	"net/http"
	"time"

	"caplock/pkg/requestcontext"
)

// WithTime pins the request time, letting handler tests drive the timelock
// clock without sleeping.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
