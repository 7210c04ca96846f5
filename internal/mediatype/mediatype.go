// Package mediatype maps media MIME types to canonical file extensions
// for derived filenames.
package mediatype

import "strings"

// Extension returns the file extension for a MIME type. Inputs without a
// "/" (including the empty string) map to "bin"; known subtypes are
// aliased; anything else comes back verbatim. Total over its input domain.
func Extension(mimeType string) string {
	if !strings.Contains(mimeType, "/") {
		return "bin"
	}
	subtype := strings.SplitN(mimeType, "/", 2)[1]

	switch subtype {
	// Images
	case "jpeg":
		return "jpg"
	case "svg+xml":
		return "svg"

	// Videos
	case "quicktime":
		return "mov"
	case "x-msvideo":
		return "avi"
	case "x-matroska":
		return "mkv"
	case "mpeg4":
		return "mp4"
	case "3gpp":
		return "3gp"
	case "x-flv":
		return "flv"

	// Documents
	case "msword":
		return "doc"
	case "vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "docx"
	case "vnd.ms-excel":
		return "xls"
	case "vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"

	// Audio
	case "mpeg":
		return "mp3"
	case "x-wav":
		return "wav"
	}
	return subtype
}
