// ABOUTME: NATS request/reply transport: each message body is one JSON-RPC request.
// ABOUTME: Replies go to the message's reply subject; notifications get no reply.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultNATSSubject is the subject served when none is configured.
const DefaultNATSSubject = "msu.mcp"

// ConnectNATS opens a NATS connection with reconnect handling and logging.
func ConnectNATS(url, name string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to NATS", "url", url, "name", name)

	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	logger.Info("connected to NATS", "url", nc.ConnectedUrl())
	return nc, nil
}

// NATSConfig holds configuration for the NATS transport.
type NATSConfig struct {
	Handler        *Handler
	Logger         *slog.Logger
	Subject        string
	Queue          string        // optional queue group for load-balanced replicas
	RequestTimeout time.Duration // per-message deadline; zero means none
}

// NATSServer serves MCP over NATS request/reply.
type NATSServer struct {
	handler *Handler
	logger  *slog.Logger
	subject string
	queue   string
	timeout time.Duration
}

// NewNATSServer creates a NATS transport with the given configuration.
func NewNATSServer(cfg NATSConfig) (*NATSServer, error) {
	if cfg.Handler == nil {
		return nil, errors.New("handler is required")
	}
	subject := cfg.Subject
	if subject == "" {
		subject = DefaultNATSSubject
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSServer{
		handler: cfg.Handler,
		logger:  logger,
		subject: subject,
		queue:   cfg.Queue,
		timeout: cfg.RequestTimeout,
	}, nil
}

// Subject returns the subject being served.
func (s *NATSServer) Subject() string {
	return s.subject
}

// Serve subscribes on nc and answers requests until ctx is done. On shutdown
// the subscription is drained: messages already delivered to it are still
// handled, and Serve returns once every reply has been sent.
func (s *NATSServer) Serve(ctx context.Context, nc *nats.Conn) error {
	var (
		sub *nats.Subscription
		err error
	)
	if s.queue != "" {
		sub, err = nc.QueueSubscribeSync(s.subject, s.queue)
	} else {
		sub, err = nc.SubscribeSync(s.subject)
	}
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.subject, err)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flushing subscription to %s: %w", s.subject, err)
	}

	s.logger.Info("MCP NATS transport ready", "subject", s.subject, "queue", s.queue)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info("draining MCP NATS subscription")
			if err := sub.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
				s.logger.Warn("failed to drain NATS subscription", "error", err)
			}
		case <-stopped:
		}
	}()

	// Only this loop adds to wg, so Wait below never races an Add.
	var wg sync.WaitGroup
	var serveErr error
	for {
		msg, err := sub.NextMsgWithContext(context.Background())
		if err != nil {
			// A drained subscription reports ErrBadSubscription once empty.
			if ctx.Err() == nil {
				serveErr = fmt.Errorf("receiving on %s: %w", s.subject, err)
			}
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleMsg(ctx, msg)
		}()
	}
	wg.Wait()

	if err := nc.Flush(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		s.logger.Warn("failed to flush NATS replies", "error", err)
	}

	s.logger.Info("MCP NATS transport closed")
	return serveErr
}

func (s *NATSServer) handleMsg(ctx context.Context, msg *nats.Msg) {
	// In-flight calls may outlive shutdown so their replies still go out.
	reqCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(reqCtx, s.timeout)
		defer cancel()
	}

	reply := s.handler.HandleMessage(reqCtx, msg.Data)
	if reply == nil {
		return
	}
	if msg.Reply == "" {
		s.logger.Debug("dropping MCP response for message without reply subject")
		return
	}
	if err := msg.Respond(reply); err != nil {
		s.logger.Warn("failed to send MCP response", "error", err)
	}
}
