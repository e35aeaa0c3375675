package constants

import "strings"

// MediaKind is the declared container kind of an input document.
type MediaKind string

const (
	PDF   MediaKind = "PDF"
	IMAGE MediaKind = "IMAGE"
)

// AllowedExtensions holds the default allowed file extensions for report ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// PageBreakMarker separates page texts in the raw text of a multi-page document.
const PageBreakMarker = "\n\n--- PAGE BREAK ---\n\n"

// MinRawTextLen is the minimum recognized-text length below which a document
// is treated as unreadable.
const MinRawTextLen = 20

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind maps a file extension to a MediaKind, or "" if unsupported.
func MapExtToKind(ext string) MediaKind {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return ""
	}
}
