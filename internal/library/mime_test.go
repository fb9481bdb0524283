// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import "testing"

func TestContentType(t *testing.T) {
	tests := map[string]string{
		".mp4":  "video/mp4",
		".MP4":  "video/mp4",
		".mov":  "video/quicktime",
		".avi":  "video/x-msvideo",
		".mkv":  "video/x-matroska",
		".webm": "video/webm",
		".flv":  "video/mp4",
		"":      "video/mp4",
	}
	for ext, want := range tests {
		if got := ContentType(ext); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestExtensionsAreVideoExtensions(t *testing.T) {
	for _, ext := range Extensions() {
		if !IsVideoExtension(ext) {
			t.Errorf("%s listed but not accepted", ext)
		}
	}
	if IsVideoExtension(".txt") {
		t.Error(".txt accepted")
	}
}
