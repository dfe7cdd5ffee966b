package intercepters

import (
	"context"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/atinyakov/linkshort/internal/middleware"
)

// requestIDKey is the metadata key, the lowercase form of the HTTP header.
const requestIDKey = "x-request-id"

// WithRequestID reuses the caller's x-request-id metadata or generates a
// UUID, stores it in the context and returns it in the response header.
func WithRequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(requestIDKey); len(values) > 0 {
				id = values[0]
			}
		}
		if id == "" || len(id) > middleware.MaxRequestIDLength {
			id = uuid.NewString()
		}

		// fails only outside a real server transport
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, id))

		return handler(middleware.ContextWithRequestID(ctx, id), req)
	}
}

// RequestIDFields exposes the request id to the logging interceptor.
func RequestIDFields(ctx context.Context) logging.Fields {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		return logging.Fields{"request_id", id}
	}
	return nil
}
