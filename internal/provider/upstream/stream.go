package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/observability"
)

const (
	dataPrefix      = "data:"
	readBufferSize  = 4096
	maxLoggedLength = 256
)

// ErrMalformedEvent marks a stream line whose payload is not a JSON object.
var ErrMalformedEvent = errors.New("malformed stream event")

// Reassembler rebuilds vendor SSE lines from arbitrarily split chunks.
type Reassembler struct {
	pending []byte
}

// Feed appends a chunk and returns the payloads of every complete "data:" line,
// with the prefix and surrounding whitespace removed.
func (r *Reassembler) Feed(chunk []byte) [][]byte {
	// Bytes already pending hold no newline.
	scanned := len(r.pending)
	r.pending = append(r.pending, chunk...)

	var payloads [][]byte
	for {
		i := bytes.IndexByte(r.pending[scanned:], '\n')
		if i < 0 {
			break
		}
		i += scanned
		if payload, ok := dataPayload(r.pending[:i]); ok {
			payloads = append(payloads, payload)
		}
		r.pending = r.pending[i+1:]
		scanned = 0
	}

	if len(r.pending) == 0 {
		r.pending = nil
	}

	return payloads
}

// Flush returns the payload of a trailing line that never got its newline.
func (r *Reassembler) Flush() [][]byte {
	defer func() { r.pending = nil }()

	if payload, ok := dataPayload(r.pending); ok {
		return [][]byte{payload}
	}
	return nil
}

// Pending reports how many bytes are buffered without a line terminator.
func (r *Reassembler) Pending() int {
	return len(r.pending)
}

func dataPayload(line []byte) ([]byte, bool) {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return nil, false
	}
	return bytes.Clone(bytes.TrimSpace(line[len(dataPrefix):])), true
}

// DecodeEvent parses one event payload. A finish reason is only reported when
// the field is present and not null.
func DecodeEvent(payload []byte) (domain.StreamEvent, error) {
	if !gjson.ValidBytes(payload) {
		return domain.StreamEvent{}, fmt.Errorf("%w: invalid JSON", ErrMalformedEvent)
	}

	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return domain.StreamEvent{}, fmt.Errorf("%w: not an object", ErrMalformedEvent)
	}

	var ev domain.StreamEvent
	if text := root.Get("text"); text.Exists() && text.Type != gjson.Null {
		s := text.String()
		ev.Text = &s
	}

	finish := root.Get("finish_reason")
	if !finish.Exists() {
		finish = root.Get("finishReason")
	}
	if finish.Exists() && finish.Type != gjson.Null {
		s := finish.String()
		ev.FinishReason = &s
	}

	return ev, nil
}

// StreamEvents reads the vendor SSE body and returns its decoded events on a
// channel of the given capacity. Undecodable lines are logged and skipped.
// Reading stops after the first event with a finish reason, at end of body,
// on a read error (sent as a final event with Err set), or when ctx is done.
// The body is always closed.
func StreamEvents(ctx context.Context, body io.ReadCloser, buffer int) <-chan domain.StreamEvent {
	if buffer < 0 {
		buffer = 0
	}
	events := make(chan domain.StreamEvent, buffer)
	go pumpEvents(ctx, body, events)
	return events
}

func pumpEvents(ctx context.Context, body io.ReadCloser, events chan<- domain.StreamEvent) {
	defer close(events)
	defer body.Close()

	logger := observability.FromContext(ctx)

	send := func(ev domain.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			logger.Debug("stream consumer gone, releasing upstream reader")
			return false
		}
	}

	// emit reports whether reading should stop.
	emit := func(payloads [][]byte) bool {
		for _, payload := range payloads {
			ev, err := DecodeEvent(payload)
			if err != nil {
				observability.StreamParseErrorsTotal.Inc()
				logger.Warn("discarding undecodable stream event",
					observability.Error(err),
					observability.String("payload", truncate(payload)))
				continue
			}
			observability.StreamEventsTotal.Inc()

			if !send(ev) {
				return true
			}
			if ev.FinishReason != nil {
				logger.Debug("upstream finish reason received",
					observability.String("finish_reason", *ev.FinishReason))
				return true
			}
		}
		return false
	}

	var reassembler Reassembler
	buf := make([]byte, readBufferSize)

	for {
		n, err := body.Read(buf)
		if n > 0 && emit(reassembler.Feed(buf[:n])) {
			return
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			emit(reassembler.Flush())
			return
		case ctx.Err() != nil:
			return
		default:
			logger.Error("upstream stream read failed", observability.Error(err))
			send(domain.StreamEvent{Err: fmt.Errorf("read upstream stream: %w", err)})
			return
		}
	}
}

func truncate(b []byte) string {
	if len(b) <= maxLoggedLength {
		return string(b)
	}
	return string(b[:maxLoggedLength]) + "..."
}
