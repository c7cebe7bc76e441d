package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/sharely/internal/metrics"
)

// resultCode names the outcome of an RPC the way Connect does, with "ok"
// for success.
func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}

// logLevel picks the level for an RPC outcome. Rejected edits and missing
// bills are expected traffic; anything the service could not classify is not.
func logLevel(err error) slog.Level {
	if err == nil {
		return slog.LevelInfo
	}
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeAlreadyExists,
		connect.CodeUnauthenticated, connect.CodePermissionDenied, connect.CodeAborted,
		connect.CodeCanceled, connect.CodeDeadlineExceeded:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// LoggingInterceptor returns a Connect interceptor that logs one line per RPC:
// procedure, result code, duration and the bill the edit token was for.
// Responses that implement slog.LogValuer (a bill and its totals) are logged
// under "result", so every edit leaves the new version and grand total in the
// log.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("code", resultCode(err)),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if billID := GetBillID(ctx); billID != "" {
				attrs = append(attrs, slog.String("token_bill_id", billID))
			}
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					attrs = append(attrs, slog.String("error", connectErr.Message()))
				} else {
					attrs = append(attrs, slog.Any("error", err))
				}
			} else if resp != nil {
				if v, ok := resp.Any().(slog.LogValuer); ok {
					attrs = append(attrs, slog.Any("result", v))
				}
			}

			slog.LogAttrs(ctx, logLevel(err), "RPC completed", attrs...)
			return resp, err
		}
	}
}

// MetricsInterceptor returns a Connect interceptor counting RPCs by procedure
// and result code.
func MetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			m.IncrementRPC(req.Spec().Procedure, resultCode(err))
			return resp, err
		}
	}
}
