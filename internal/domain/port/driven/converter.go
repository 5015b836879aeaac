package driven

import (
	"context"

	"github.com/dstanley/certhost/internal/domain/model"
)

// Converter defines the driven port for certificate format conversion.
type Converter interface {
	// Convert renders doc (an SVG document) into the target format. The svg
	// format is returned unchanged. Failures wrap ErrConversionFailed and
	// never return partial output alongside the error.
	Convert(ctx context.Context, doc []byte, format model.OutputFormat) ([]byte, error)
}
