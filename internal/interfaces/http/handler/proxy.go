package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/autocare/platform/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenSource hands out the agent's platform session
type TokenSource interface {
	BaseURL() *url.URL
	Token(ctx context.Context) (string, error)
	InvalidateToken()
	Login(ctx context.Context) (string, error)
}

// ProxyHandler forwards /api/* from the POS to the platform
type ProxyHandler struct {
	BaseHandler
	proxy  *httputil.ReverseProxy
	logger *zap.Logger
}

// NewProxyHandler creates a ProxyHandler. transport may be nil.
func NewProxyHandler(tokens TokenSource, transport http.RoundTripper, logger *zap.Logger) *ProxyHandler {
	if transport == nil {
		transport = http.DefaultTransport
	}
	target := tokens.BaseURL()
	h := &ProxyHandler{logger: logger}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = target.Host
			r.Out.Header.Del("Cookie")
		},
		Transport: &bearerTransport{tokens: tokens, next: transport, logger: logger},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("Platform proxy request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			if r.Context().Err() != nil {
				return
			}
			resp := dto.NewErrorResponse(dto.ErrCodeBadGateway, "Platform request failed", w.Header().Get(middleware.RequestIDHeader))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(resp)
		},
	}
	return h
}

// Forward proxies the request
// ANY /api/*path
func (h *ProxyHandler) Forward(c *gin.Context) {
	c.Request.Header.Del("Authorization")
	h.proxy.ServeHTTP(c.Writer, c.Request)
}

// bearerTransport signs requests with the agent token and logs in again
// once when the platform answers 401.
type bearerTransport struct {
	tokens TokenSource
	next   http.RoundTripper
	logger *zap.Logger
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	token, err := t.tokens.Token(req.Context())
	if err != nil {
		return nil, err
	}
	resp, err := t.next.RoundTrip(signed(req, body, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	t.tokens.InvalidateToken()
	token, err = t.tokens.Login(req.Context())
	if err != nil {
		return nil, err
	}
	t.logger.Info("Retrying proxied request after re-login", zap.String("path", req.URL.Path))
	return t.next.RoundTrip(signed(req, body, token))
}

func signed(req *http.Request, body []byte, token string) *http.Request {
	out := req.Clone(req.Context())
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	out.Header.Set("Authorization", "Bearer "+token)
	return out
}
