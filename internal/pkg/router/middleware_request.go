package router

import (
	"context"
	"net"
	"net/http"
	"strings"
	"unicode"

	"github.com/shandysiswandi/otpguard/internal/pkg/config"
	"github.com/shandysiswandi/otpguard/internal/pkg/instrument"
	"github.com/shandysiswandi/otpguard/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is the canonical header used to track requests end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative header name used by some proxies.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// proxyHeaders are consulted in order, and only when the deployment says a
// trusted proxy sits in front of the service.
var proxyHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

type clientIPKey struct{}

// ClientIP returns the caller address resolved for the request, or "".
func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// middlewareRequestContext stamps every request with a correlation id and
// the resolved client address before any other middleware logs it.
func middlewareRequestContext(cfg config.Config, ids uid.StringID) Middleware {
	trustProxy := cfg != nil && cfg.GetBool("app.server.trust_proxy_headers")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cid := correlationID(r.Header)
			if cid == "" && ids != nil {
				cid = ids.Generate()
			}
			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				ctx = instrument.SetCorrelationID(ctx, cid)
			}

			if ip := clientIP(r, trustProxy); ip != "" {
				ctx = context.WithValue(ctx, clientIPKey{}, ip)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func correlationID(h http.Header) string {
	for _, name := range []string{HeaderCorrelationID, HeaderRequestID} {
		v := strings.TrimSpace(h.Get(name))
		if v == "" || strings.IndexFunc(v, unicode.IsControl) >= 0 {
			continue
		}
		if len(v) > maxCorrelationIDLen {
			v = v[:maxCorrelationIDLen]
		}
		return v
	}

	return ""
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, name := range proxyHeaders {
			v, _, _ := strings.Cut(r.Header.Get(name), ",")
			if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}

	return ""
}
