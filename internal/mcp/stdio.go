// ABOUTME: Newline-delimited JSON-RPC transport over a reader/writer pair (stdin/stdout).
// ABOUTME: Requests run concurrently; replies are written one line at a time.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// MaxMessageSize is the longest accepted message line (4MB).
const MaxMessageSize = 4 << 20

// StdioServer serves MCP over a byte stream, one JSON message per line.
type StdioServer struct {
	handler *Handler
	logger  *slog.Logger
}

// NewStdioServer creates a stdio transport for handler.
func NewStdioServer(handler *Handler, logger *slog.Logger) *StdioServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioServer{handler: handler, logger: logger}
}

// Serve reads requests from r until EOF or ctx is done and writes replies to
// w. In-flight calls are awaited before Serve returns. EOF is a clean exit.
func (s *StdioServer) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		br := bufio.NewReaderSize(r, 64*1024)
		for {
			line, tooLong, err := readLine(br, MaxMessageSize)
			if tooLong || len(line) > 0 {
				// A nil message stands for a discarded oversized line.
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	out := &lineWriter{w: w}
	var wg sync.WaitGroup
	defer wg.Wait()

	s.logger.Info("MCP stdio transport ready")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-lines:
			if !ok {
				wg.Wait()
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading stdin: %w", err)
					}
				default:
				}
				s.logger.Info("MCP stdio transport closed")
				return nil
			}
			if msg == nil {
				s.logger.Warn("discarding oversized MCP message", "limit_bytes", MaxMessageSize)
				if err := out.writeLine(s.handler.encode(errorResponse(nullID, JSONRPCInvalidRequest, "message too large", nil))); err != nil {
					s.logger.Warn("failed to write MCP response", "error", err)
				}
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				reply := s.handler.HandleMessage(ctx, msg)
				if reply == nil {
					return
				}
				if err := out.writeLine(reply); err != nil && !errors.Is(err, io.ErrClosedPipe) {
					s.logger.Warn("failed to write MCP response", "error", err)
				}
			}()
		}
	}
}

// readLine returns the next line without surrounding whitespace. A line
// longer than limit is consumed and dropped, and the flag is set.
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(bytes.TrimRight(chunk, "\r\n")) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if tooLong {
			return nil, true, err
		}
		return bytes.TrimSpace(buf), false, err
	}
}

// lineWriter serializes whole-line writes from concurrent handlers.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) writeLine(data []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	_, err := lw.w.Write(buf)
	return err
}
