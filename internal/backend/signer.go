package backend

import (
	"context"
	"net/http"
	"strings"
)

// RequestSigner attaches credentials to an outbound backend request.
// Authentication and authorization belong to the backend; the panel only
// carries whatever the backend expects.
type RequestSigner interface {
	Sign(ctx context.Context, h http.Header) error
}

// NoopSigner sends requests unauthenticated.
type NoopSigner struct{}

func (NoopSigner) Sign(context.Context, http.Header) error { return nil }

// BearerSigner sends a static API token.
type BearerSigner struct {
	Token string
}

func (s BearerSigner) Sign(_ context.Context, h http.Header) error {
	if s.Token != "" {
		h.Set("Authorization", "Bearer "+s.Token)
	}
	return nil
}

// ForwardCookieSigner relays the named cookies the browser sent to the panel.
// The inbound cookies must be placed in the context with WithInboundCookies.
type ForwardCookieSigner struct {
	Names []string
}

func (s ForwardCookieSigner) Sign(ctx context.Context, h http.Header) error {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	var parts []string
	for _, c := range cookies {
		for _, name := range s.Names {
			if c.Name == name {
				parts = append(parts, c.Name+"="+c.Value)
			}
		}
	}
	if len(parts) > 0 {
		h.Set("Cookie", strings.Join(parts, "; "))
	}
	return nil
}

type cookiesKey struct{}

// WithInboundCookies stores the browser's cookies for ForwardCookieSigner.
func WithInboundCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

// SignerFor builds the signer matching the configured mode:
// "bearer", "cookie" or anything else for none.
func SignerFor(mode, token string, cookieNames []string) RequestSigner {
	switch mode {
	case "bearer":
		return BearerSigner{Token: token}
	case "cookie":
		return ForwardCookieSigner{Names: cookieNames}
	default:
		return NoopSigner{}
	}
}
