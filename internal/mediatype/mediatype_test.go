package mediatype

import "testing"

func TestExtensionAliases(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":    "jpg",
		"image/svg+xml": "svg",
		"video/quicktime": "mov",
		"video/x-msvideo": "avi",
		"video/x-matroska": "mkv",
		"video/mpeg4":     "mp4",
		"video/3gpp":      "3gp",
		"video/x-flv":     "flv",
		"application/msword": "doc",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
		"application/vnd.ms-excel": "xls",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "xlsx",
		"audio/mpeg":  "mp3",
		"audio/x-wav": "wav",
	}
	for mimeType, want := range cases {
		if got := Extension(mimeType); got != want {
			t.Errorf("Extension(%q) = %q, want %q", mimeType, got, want)
		}
	}
}

func TestExtensionUnmappedSubtype(t *testing.T) {
	if got := Extension("image/png"); got != "png" {
		t.Errorf("Extension(image/png) = %q, want png", got)
	}
	if got := Extension("application/x-custom"); got != "x-custom" {
		t.Errorf("Extension(application/x-custom) = %q, want x-custom", got)
	}
}

func TestExtensionNoSlash(t *testing.T) {
	if got := Extension(""); got != "bin" {
		t.Errorf("Extension(empty) = %q, want bin", got)
	}
	if got := Extension("jpeg"); got != "bin" {
		t.Errorf("Extension(jpeg) = %q, want bin", got)
	}
}
