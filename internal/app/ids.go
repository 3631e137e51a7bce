package app

import "github.com/google/uuid"

// newRequestID tags a search so its log lines, feed event and response can
// be matched up.
func newRequestID() string {
	return uuid.NewString()
}
