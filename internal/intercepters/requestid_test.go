package intercepters_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/atinyakov/linkshort/internal/intercepters"
	"github.com/atinyakov/linkshort/internal/middleware"
)

func callWithRequestID(t *testing.T, ctx context.Context) string {
	t.Helper()

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = middleware.RequestIDFromContext(ctx)
		return "ok", nil
	}

	resp, err := intercepters.WithRequestID()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/linkshort.v1.LinkDirectory/Get"}, handler)
	require.NoError(t, err)
	require.Equal(t, "ok", resp)
	return seen
}

func TestWithRequestID_FromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "req-7"))

	assert.Equal(t, "req-7", callWithRequestID(t, ctx))
}

func TestWithRequestID_Generated(t *testing.T) {
	for _, ctx := range []context.Context{
		context.Background(),
		metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", strings.Repeat("x", 100))),
	} {
		id := callWithRequestID(t, ctx)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
}

func TestRequestIDFields(t *testing.T) {
	assert.Nil(t, intercepters.RequestIDFields(context.Background()))

	ctx := middleware.ContextWithRequestID(context.Background(), "req-7")
	fields := intercepters.RequestIDFields(ctx)
	assert.Len(t, fields, 2)
	assert.Equal(t, "request_id", fields[0])
	assert.Equal(t, "req-7", fields[1])
}
