package model

import "fmt"

// OutputFormat is a certificate output format.
type OutputFormat string

const (
	// FormatSVG is the source vector format certificates are rendered in.
	FormatSVG OutputFormat = "svg"
	// FormatPNG is the raster output format.
	FormatPNG OutputFormat = "png"
	// FormatPDF is the fixed-page output format.
	FormatPDF OutputFormat = "pdf"
)

// ParseOutputFormat validates a raw format string from a request or config.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch f := OutputFormat(raw); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
