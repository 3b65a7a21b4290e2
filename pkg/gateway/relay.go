package gateway

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StreamBodyMarker replaces the response body in audit records for streaming
// responses, which cannot be captured without breaking passthrough.
const StreamBodyMarker = "[stream]"

// streamCopyBufferSize is the chunk size for streaming relay copies.
const streamCopyBufferSize = 32 * 1024

// IsStreaming reports whether an upstream Content-Type signals a streaming
// payload. The check is a heuristic: any media type containing the token
// "stream" (text/event-stream, application/x-ndjson-stream, ...) is relayed
// chunk-by-chunk. Upstreams that stream under other media types are relayed
// buffered.
func IsStreaming(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "stream")
}

// RelayResult describes what was delivered to the caller, for the audit
// record.
type RelayResult struct {
	// Status is the HTTP status relayed to the caller.
	Status int

	// Header is the response header set after hop-by-hop stripping.
	Header http.Header

	// Body is the buffered response body, or StreamBodyMarker for
	// streaming responses. Empty when capture is disabled.
	Body string

	// Streamed reports whether the streaming path was taken.
	Streamed bool

	// Bytes is the number of body bytes delivered.
	Bytes int64
}

// Relay delivers an upstream response to the caller. Streaming responses
// are copied chunk-by-chunk with a flush after every read so the caller
// receives bytes before the upstream finishes; buffered responses are read
// fully (optionally captured for auditing) and written once.
//
// Hop-by-hop headers are stripped and the upstream's remaining headers are
// merged into w before the status is written; CORS headers already present
// on w are preserved. Client disconnects propagate through the request
// context to cancel the upstream read.
func Relay(w http.ResponseWriter, resp *http.Response, captureBody bool, maxCapture int) (*RelayResult, error) {
	defer resp.Body.Close()

	StripHopByHop(resp.Header)
	header := w.Header()
	for name, values := range resp.Header {
		// Don't clobber CORS headers set by the pipeline.
		if header.Get(name) != "" {
			continue
		}
		header[name] = values
	}

	result := &RelayResult{
		Status: resp.StatusCode,
		Header: resp.Header,
	}

	if IsStreaming(resp.Header.Get("Content-Type")) {
		result.Streamed = true
		result.Body = StreamBodyMarker
		w.WriteHeader(resp.StatusCode)

		n, err := copyFlush(w, resp.Body)
		result.Bytes = n
		if err != nil {
			// Headers are gone; nothing more can be sent to the
			// caller. Surface the cause for the audit record.
			return result, fmt.Errorf("stream relay interrupted: %w", err)
		}
		return result, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("reading upstream body: %w", err)
	}
	if captureBody {
		captured := body
		if maxCapture > 0 && len(captured) > maxCapture {
			captured = captured[:maxCapture]
		}
		result.Body = string(captured)
	}

	w.WriteHeader(resp.StatusCode)
	n, err := w.Write(body)
	result.Bytes = int64(n)
	if err != nil {
		return result, fmt.Errorf("writing response body: %w", err)
	}
	return result, nil
}

// copyFlush copies src to w, flushing after every chunk so bytes reach the
// caller as they arrive. No buffering, transformation, or reordering.
func copyFlush(w http.ResponseWriter, src io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, streamCopyBufferSize)
	var written int64

	for {
		n, err := src.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
