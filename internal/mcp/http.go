// ABOUTME: Streamable HTTP transport for the MCP server with session management.
// ABOUTME: POST /mcp carries JSON-RPC messages; DELETE /mcp ends a session.

package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/2389/msu-mcp/internal/auth"
	"github.com/2389/msu-mcp/internal/session"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Header names used by the Streamable HTTP transport.
const (
	HeaderSessionID       = "Mcp-Session-Id"
	HeaderProtocolVersion = "Mcp-Protocol-Version"
)

// Session limits applied when HTTPConfig leaves them zero.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// HTTPConfig holds configuration for the HTTP transport.
type HTTPConfig struct {
	Handler       *Handler
	Logger        *slog.Logger
	TokenVerifier auth.TokenVerifier
	RequireAuth   bool // If true, reject requests without a valid bearer token
	SessionTTL    time.Duration
	MaxSessions   int
}

// HTTPServer serves MCP over the Streamable HTTP transport.
type HTTPServer struct {
	handler     *Handler
	logger      *slog.Logger
	verifier    auth.TokenVerifier
	requireAuth bool
	sessions    *session.Store
}

// NewHTTPServer creates a new HTTP transport with the given configuration.
func NewHTTPServer(cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.Handler == nil {
		return nil, errors.New("handler is required")
	}
	if cfg.RequireAuth && cfg.TokenVerifier == nil {
		return nil, errors.New("token verifier required when auth is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}

	return &HTTPServer{
		handler:     cfg.Handler,
		logger:      logger,
		verifier:    cfg.TokenVerifier,
		requireAuth: cfg.RequireAuth,
		sessions:    session.New(ttl, maxSessions),
	}, nil
}

// Close releases the session store.
func (s *HTTPServer) Close() {
	s.sessions.Close()
}

// Routes returns the transport's router: /mcp plus an unauthenticated /healthz.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.verifier != nil {
			r.Use(auth.BearerMiddleware(s.verifier, s.requireAuth))
		}
		r.Post("/mcp", s.handlePost)
		r.Delete("/mcp", s.handleDelete)
		// No server-initiated SSE streams.
		r.Get("/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, DELETE")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		})
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleDelete terminates a session. Only the principal that created the
// session may end it.
func (s *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(HeaderSessionID)
	if sessionID == "" {
		http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
		return
	}

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if sess.Owner != "" && sess.Owner != principalSubject(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	s.sessions.Delete(sessionID)
	s.logger.Info("MCP session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *HTTPServer) handlePost(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(HeaderSessionID)
	protoVersion := r.Header.Get(HeaderProtocolVersion)

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.writeResponse(w, errorResponse(nullID, JSONRPCParseError, "failed to read request body", nil))
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.writeResponse(w, errorResponse(nullID, JSONRPCInvalidRequest, "request body too large", nil))
		return
	}

	req, errResp := decodeRequest(body)
	if errResp != nil {
		s.writeResponse(w, errResp)
		return
	}

	isInitialize := req.Method == "initialize"

	if !isInitialize {
		if protoVersion != "" && !isSupportedProtocolVersion(protoVersion) {
			http.Error(w, "Bad Request: unsupported Mcp-Protocol-Version", http.StatusBadRequest)
			return
		}
		if sessionID == "" {
			http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
			return
		}
		sess, ok := s.sessions.Get(sessionID)
		if !ok {
			// Session expired or invalid; the client must re-initialize.
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		if protoVersion != "" && protoVersion != sess.ProtocolVersion {
			http.Error(w, "Bad Request: Mcp-Protocol-Version does not match session", http.StatusBadRequest)
			return
		}
	}

	s.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", req.IsNotification(),
		"session_id", sessionID,
	)

	resp := s.handler.Handle(r.Context(), req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if isInitialize && resp.Error == nil {
		version := latestProtocolVersion
		if res, ok := resp.Result.(MCPInitializeResult); ok {
			version = res.ProtocolVersion
		}
		sess := s.sessions.Create(version, principalSubject(r))
		s.logger.Info("MCP session created",
			"session_id", sess.ID,
			"protocol_version", sess.ProtocolVersion,
		)
		w.Header().Set(HeaderSessionID, sess.ID)
	}

	s.writeResponse(w, resp)
}

func (s *HTTPServer) writeResponse(w http.ResponseWriter, resp *JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(s.handler.encode(resp)); err != nil {
		s.logger.Warn("failed to write JSON-RPC response", "error", err)
	}
}

func principalSubject(r *http.Request) string {
	if p := auth.FromContext(r.Context()); p != nil {
		return p.Subject
	}
	return ""
}
