// Package grpc exposes the link service over gRPC as linkshort.v1.LinkDirectory.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/intercepters"
	"github.com/atinyakov/linkshort/internal/storage"
)

// Server wraps the gRPC server and dependencies.
type Server struct {
	grpcServer *grpc.Server
	addr       string
	logger     *zap.Logger
}

// New creates a gRPC server serving svc on addr.
func New(addr string, logger *zap.Logger, svc service.LinkServiceIface) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			intercepters.WithRequestID(),
			logging.UnaryServerInterceptor(
				intercepters.InterceptorLogger(logger),
				logging.WithLogOnEvents(logging.FinishCall),
				logging.WithFieldsFromContext(intercepters.RequestIDFields),
			),
			recovery.UnaryServerInterceptor(),
		),
	)

	RegisterLinkDirectoryServer(s, &LinkDirectory{
		Service: svc,
		Logger:  logger,
	})

	return &Server{
		grpcServer: s,
		addr:       addr,
		logger:     logger,
	}
}

// Start listens on the configured address and serves until stopped.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.logger.Error("gRPC server failed to listen", zap.String("addr", s.addr), zap.Error(err))
		return err
	}

	s.logger.Info("gRPC server listening", zap.String("addr", s.addr))
	return s.Serve(lis)
}

// Serve serves on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// GracefulStop shuts down the server gracefully.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// LinkDirectory implements LinkDirectoryServer on top of the link service.
type LinkDirectory struct {
	Service service.LinkServiceIface
	Logger  *zap.Logger
}

func (d *LinkDirectory) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	targetURL := fields["url"].GetStringValue()
	code := fields["code"].GetStringValue()

	record, err := d.Service.Create(ctx, targetURL, code)
	if err != nil {
		return nil, d.toStatus(err)
	}

	return d.linkToStruct(record)
}

func (d *LinkDirectory) Get(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	record, err := d.Service.Get(ctx, req.GetValue())
	if err != nil {
		return nil, d.toStatus(err)
	}

	return d.linkToStruct(record)
}

func (d *LinkDirectory) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	records, err := d.Service.List(ctx)
	if err != nil {
		return nil, d.toStatus(err)
	}

	values := make([]*structpb.Value, 0, len(records))
	for i := range records {
		link, err := d.linkToStruct(&records[i])
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(link))
	}

	return &structpb.ListValue{Values: values}, nil
}

func (d *LinkDirectory) Delete(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := d.Service.Delete(ctx, req.GetValue()); err != nil {
		return nil, d.toStatus(err)
	}

	return &emptypb.Empty{}, nil
}

func (d *LinkDirectory) Redirect(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	target, err := d.Service.Redirect(ctx, req.GetValue())
	if err != nil {
		return nil, d.toStatus(err)
	}

	return wrapperspb.String(target), nil
}

// linkToStruct renders a record with the same field names as the HTTP API
// plus the public short_url.
func (d *LinkDirectory) linkToStruct(record *storage.LinkRecord) (*structpb.Struct, error) {
	var lastClicked any
	if record.LastClickedAt != nil {
		lastClicked = record.LastClickedAt.UTC().Format(time.RFC3339Nano)
	}

	link, err := structpb.NewStruct(map[string]any{
		"code":            record.Code,
		"target_url":      record.TargetURL,
		"short_url":       d.Service.ShortURL(record.Code),
		"total_clicks":    record.TotalClicks,
		"last_clicked_at": lastClicked,
		"created_at":      record.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		d.Logger.Error("cannot encode link", zap.String("code", record.Code), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	return link, nil
}

func (d *LinkDirectory) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrCodeConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrAllocationExhausted):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		d.Logger.Error("link directory call failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
