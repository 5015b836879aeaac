// Package convert turns rendered SVG certificates into their requested
// output formats, either with a local rsvg-convert subprocess or through a
// remote conversion API. Both converters treat every failure mode --
// non-zero exit, spawn error, non-2xx response, timeout -- as a conversion
// failure surfaced to the caller; nothing is silently dropped.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Converter = (*Local)(nil)

// Local converts certificates by invoking an external rendering tool
// (rsvg-convert by default) as `<tool> -o <out> -f <format> <in>`.
// Exit code 0 is the only success signal.
type Local struct {
	tool    string
	timeout time.Duration
}

// NewLocal creates a subprocess-backed converter. timeout bounds each
// conversion; a hung tool is killed and reported as a conversion failure.
func NewLocal(tool string, timeout time.Duration) *Local {
	return &Local{tool: tool, timeout: timeout}
}

// Convert writes doc to a temporary file, runs the tool against it, and
// reads the converted result back. Temporary files are removed on every
// return path.
func (l *Local) Convert(ctx context.Context, doc []byte, format model.OutputFormat) ([]byte, error) {
	if format == model.FormatSVG {
		return doc, nil
	}

	in, err := os.CreateTemp("", "certhost-*.svg")
	if err != nil {
		return nil, fmt.Errorf("%w: create input file: %w", driven.ErrConversionFailed, err)
	}
	defer os.Remove(in.Name())

	if _, err := in.Write(doc); err != nil {
		in.Close()
		return nil, fmt.Errorf("%w: write input file: %w", driven.ErrConversionFailed, err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("%w: close input file: %w", driven.ErrConversionFailed, err)
	}

	out, err := os.CreateTemp("", "certhost-*."+string(format))
	if err != nil {
		return nil, fmt.Errorf("%w: create output file: %w", driven.ErrConversionFailed, err)
	}
	out.Close()
	defer os.Remove(out.Name())

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.tool, "-o", out.Name(), "-f", string(format), in.Name())
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s timed out after %s", driven.ErrConversionFailed, l.tool, l.timeout)
		}
		return nil, fmt.Errorf("%w: %s: %w: %s", driven.ErrConversionFailed, l.tool, err, bytes.TrimSpace(output))
	}

	data, err := os.ReadFile(out.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: read output file: %w", driven.ErrConversionFailed, err)
	}

	return data, nil
}
