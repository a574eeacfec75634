package client

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"
)

var (
	ErrUnavailable  = errorString("server unavailable")
	ErrUnauthorized = errorString("unauthorized")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// APIError is a rejection reported by the server.
type APIError struct {
	Code    codes.Code
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is lets errors.Is(err, ErrUnauthorized) match Unauthenticated rejections
// that carry a server message.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == codes.Unauthenticated
}
