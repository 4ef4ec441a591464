package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"fsserver/internal/logging"

	"golang.org/x/sync/errgroup"
)

const (
	initialLineBuffer = 64 * 1024
	// maxLineSize bounds one message; write_file content travels inline.
	maxLineSize = 16 * 1024 * 1024
)

// maxConcurrentRequests caps the requests handled at once. Reading pauses
// while the cap is reached.
var maxConcurrentRequests = 64

// inbound is one input line. An oversized line carries no data.
type inbound struct {
	line    []byte
	tooLong bool
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed in full and reported with tooLong set.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		var chunk []byte
		var isPrefix bool
		chunk, isPrefix, err = r.ReadLine()
		if err != nil {
			if len(line) > 0 || tooLong {
				return line, tooLong, nil
			}
			return nil, false, err
		}

		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}

// responseWriter serializes responses onto one output stream, one JSON
// document per line.
type responseWriter struct {
	mu     sync.Mutex
	out    io.Writer
	logger *logging.AppLogger
}

func (w *responseWriter) write(resp *response) error {
	data, err := encodeResponse(resp)
	if err != nil {
		w.logger.Error("Cannot encode response", "error", err)
		data, err = encodeResponse(newError(resp.ID, codeInternalError, "Internal error: cannot encode result"))
		if err != nil {
			return fmt.Errorf("encoding error response: %w", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

func encodeResponse(resp *response) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ServeStdio reads newline-delimited JSON-RPC messages from in and writes
// responses to out. Every message is handled on its own goroutine, so
// responses may be written out of order and correlate only by id. It returns
// nil after in reaches EOF and all in-flight requests have finished, or
// ctx.Err() once ctx is cancelled. Blank lines are ignored. A line longer
// than maxLineSize is answered with an invalid request error and skipped.
func ServeStdio(ctx context.Context, d *Dispatcher, in io.Reader, out io.Writer, logger *logging.AppLogger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRequests)
	writer := &responseWriter{out: out, logger: logger}

	lines := make(chan inbound)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		reader := bufio.NewReaderSize(in, initialLineBuffer)
		for {
			line, tooLong, err := readLine(reader, maxLineSize)
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				readErr <- err
				return
			}

			line = bytes.TrimSpace(line)
			if len(line) == 0 && !tooLong {
				continue
			}

			select {
			case lines <- inbound{line: line, tooLong: tooLong}:
			case <-gctx.Done():
				return
			}
		}
	}()

	var inflight int
read:
	for {
		select {
		case <-gctx.Done():
			break read
		case msg, ok := <-lines:
			if !ok {
				break read
			}

			inflight++
			g.Go(func() error {
				if msg.tooLong {
					logger.Warn("Dropping oversized message", "limit", maxLineSize)
					return writer.write(newError(nullID, codeInvalidRequest,
						fmt.Sprintf("Invalid Request: message exceeds %d bytes", maxLineSize)))
				}

				resp, ok := d.HandleMessage(gctx, msg.line)
				if !ok {
					return nil
				}
				return writer.write(resp)
			})
		}
	}

	waitErr := g.Wait()
	logger.Debug("Stdio transport stopped", "messages", inflight)

	if waitErr != nil {
		return waitErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case err := <-readErr:
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	default:
	}
	return nil
}
