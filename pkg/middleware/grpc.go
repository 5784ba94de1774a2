package middleware

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	merchantIDKey contextKey = "merchant_id"
	languageKey   contextKey = "accept_language"
)

func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantIDKey, merchantID)
}

func MerchantIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(merchantIDKey).(string)
	return v, ok && v != ""
}

func LanguageFromContext(ctx context.Context) string {
	v, _ := ctx.Value(languageKey).(string)
	return v
}

// ContextInterceptor copies x-merchant-id and accept-language from incoming metadata into the context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-merchant-id"); len(v) > 0 && v[0] != "" {
				ctx = WithMerchantID(ctx, v[0])
			}
			if v := md.Get("accept-language"); len(v) > 0 {
				ctx = context.WithValue(ctx, languageKey, v[0])
			}
		}
		return handler(ctx, req)
	}
}

func LoggingInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
