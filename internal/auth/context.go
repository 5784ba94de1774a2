package auth

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"google.golang.org/grpc/metadata"
)

// GetMerchantID returns the merchant populated by the context interceptor, falling back to raw metadata.
func GetMerchantID(ctx context.Context) string {
	if val, ok := middleware.MerchantIDFromContext(ctx); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-merchant-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// GetLanguage returns the caller's preferred language for localized messages.
func GetLanguage(ctx context.Context) string {
	if lang := middleware.LanguageFromContext(ctx); lang != "" {
		return lang
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("accept-language"); len(val) > 0 {
			return val[0]
		}
	}
	return "en"
}
