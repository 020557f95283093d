package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DoneSentinel terminates an OpenAI event stream.
const DoneSentinel = "[DONE]"

// SetSSEHeaders sets the standard headers for a Server-Sent Events response.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteEvent writes v as one "data:" event.
func WriteEvent(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// WriteDone writes the terminal sentinel event.
func WriteDone(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", DoneSentinel); err != nil {
		return fmt.Errorf("failed to write sentinel: %w", err)
	}
	return nil
}
