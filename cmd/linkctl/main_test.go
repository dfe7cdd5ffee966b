package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	grpcserver "github.com/atinyakov/linkshort/internal/app/server/grpc"
	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/storage"
)

func bufDialer(t *testing.T) dialer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mem, err := storage.CreateMemoryStorage()
	require.NoError(t, err)
	svc := service.NewLinkService(ctx, mem, service.NewCodeAllocator(mem, nil), zap.NewNop(), "http://sho.rt")

	lis := bufconn.Listen(1 << 20)
	srv := grpcserver.New("bufnet", zap.NewNop(), svc)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.GracefulStop)

	return func(string) (grpc.ClientConnInterface, io.Closer, error) {
		conn, err := grpc.NewClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, nil, err
		}
		return conn, conn, nil
	}
}

func execute(t *testing.T, dial dialer, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out, dial)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestLinkctlWorkflow(t *testing.T) {
	dial := bufDialer(t)

	out, err := execute(t, dial, "create", "https://example.com/docs", "-c", "docs01")
	require.NoError(t, err)
	assert.Equal(t, "http://sho.rt/docs01\n", out)

	_, err = execute(t, dial, "create", "https://example.com/other", "-c", "docs01")
	assert.ErrorContains(t, err, "code already exists")

	out, err = execute(t, dial, "resolve", "docs01")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs\n", out)

	out, err = execute(t, dial, "get", "docs01")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "docs01")
	assert.Contains(t, lines[1], "https://example.com/docs")
	assert.Equal(t, "1", strings.Fields(lines[1])[1])

	out, err = execute(t, dial, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "docs01")

	out, err = execute(t, dial, "delete", "docs01")
	require.NoError(t, err)
	assert.Equal(t, "deleted docs01\n", out)

	_, err = execute(t, dial, "resolve", "docs01")
	assert.ErrorContains(t, err, "not found")
}

func TestLinkctlArgs(t *testing.T) {
	dial := bufDialer(t)

	_, err := execute(t, dial, "get")
	assert.Error(t, err)

	_, err = execute(t, dial, "create", "example.com")
	assert.ErrorContains(t, err, "invalid URL")
}
