package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/nameless/internal/errors"
)

// ErrorInterceptor turns service errors into gRPC statuses.
func ErrorInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return resp, err
		}

		mapped := svcErr.Map(err)
		code := svcErr.GRPCCode(mapped)
		log.Debug("grpc call failed", "method", info.FullMethod, "code", code.String(), "err", err)

		msg := mapped.Error()
		if code == codes.Internal {
			msg = "internal error"
		}
		return nil, status.Error(code, msg)
	}
}
