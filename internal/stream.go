package internal

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strings"
)

// writeSSE sends chunks as server-sent events, flushing after each one.
// It stops when the client goes away or the sequence yields an error.
func writeSSE(ctx context.Context, w *ResponseWriter, chunks iter.Seq2[string, error], l *slog.Logger) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for chunk, err := range chunks {
		if err != nil {
			l.WarnContext(ctx, "stream ended with error", slog.Any("error", err))
			return
		}
		if ctx.Err() != nil {
			return
		}
		if _, err := w.Write(formatEvent(chunk)); err != nil {
			return
		}
		w.Flush()
	}
}

// formatEvent encodes one chunk as an SSE message. Multi-line chunks become
// multiple data lines.
func formatEvent(chunk string) []byte {
	var b strings.Builder
	for line := range strings.SplitSeq(strings.ReplaceAll(chunk, "\r\n", "\n"), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
