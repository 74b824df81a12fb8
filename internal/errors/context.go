package errors

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// context keys
type contextKey string

const (
	// RequestIDKey carries the per-request id.
	RequestIDKey contextKey = "request_id"
	// OperationKey carries the name of the operation in flight.
	OperationKey contextKey = "operation"
)

// NewContextWithRequestID returns a context carrying the given request id,
// generating one when empty.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// NewContextWithOperation returns a context carrying the operation name.
func NewContextWithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// GetRequestID extracts the request id from the context, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetOperation extracts the operation name from the context, or "".
func GetOperation(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if operation, ok := ctx.Value(OperationKey).(string); ok {
		return operation
	}
	return ""
}

// GenerateRequestID generates a new request id.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextFields collects the request id and operation carried by the context
// into logrus fields, so log entries correlate across layers.
func ContextFields(ctx context.Context) logrus.Fields {
	fields := logrus.Fields{}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	if operation := GetOperation(ctx); operation != "" {
		fields["operation"] = operation
	}
	return fields
}
