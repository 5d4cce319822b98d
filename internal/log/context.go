package log

import (
	"context"
)

type requestId struct{}

// RequestIDFromContext returns the request id attached by the logging
// middleware, or an empty string when the context carries none.
func RequestIDFromContext(c context.Context) string {
	id, ok := c.Value(requestId{}).(string)
	if !ok {
		return ""
	}
	return id
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestId{}, id)
}
