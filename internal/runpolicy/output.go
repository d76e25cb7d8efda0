package runpolicy

import (
	"io"
	"strings"
	"unicode"
)

// DefaultTag marks console lines relayed from a remote job.
const DefaultTag = "[SLURM]"

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// routeOutput writes every line of blob to w prefixed with tag and a space.
// Trailing whitespace is dropped first; an empty blob writes nothing.
func routeOutput(w io.Writer, tag, blob string) error {
	blob = strings.TrimRightFunc(blob, unicode.IsSpace)
	if blob == "" {
		return nil
	}
	var b strings.Builder
	for _, line := range strings.Split(blob, "\n") {
		b.WriteString(tag)
		b.WriteByte(' ')
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	switch f := w.(type) {
	case flusher:
		return f.Flush()
	case syncer:
		// Sync fails with EINVAL on terminals and pipes.
		_ = f.Sync()
	}
	return nil
}
