package transfer

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatM3U  = "m3u"
)

// ErrUnsupportedFormat is returned for a format that cannot be imported or exported.
var ErrUnsupportedFormat = errors.New("unsupported format")

var contentTypes = map[string]string{
	"application/json":         FormatJSON,
	"text/json":                FormatJSON,
	"text/csv":                 FormatCSV,
	"application/csv":          FormatCSV,
	"application/vnd.ms-excel": FormatCSV,
	"audio/x-mpegurl":          FormatM3U,
	"audio/mpegurl":            FormatM3U,
	"application/x-mpegurl":    FormatM3U,
}

// DetectFormat picks the import format from an explicit name, then the
// content type, then the file extension.
func DetectFormat(explicit, contentType, filename string) (string, error) {
	if explicit != "" {
		return normalizeFormat(explicit)
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if f, ok := contentTypes[mt]; ok {
				return f, nil
			}
		}
	}
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return normalizeFormat(ext)
	}
	return "", fmt.Errorf("%w: cannot tell the format of the upload", ErrUnsupportedFormat)
}

func normalizeFormat(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case FormatM3U, "m3u8":
		return FormatM3U, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type used when exporting format.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatM3U:
		return "audio/x-mpegurl"
	default:
		return "application/json"
	}
}
