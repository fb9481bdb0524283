// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import "strings"

// DefaultContentType is used for extensions outside the table.
const DefaultContentType = "video/mp4"

var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

// ContentType maps a file extension (case-insensitive, with dot) to its MIME type.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return DefaultContentType
}

// IsVideoExtension reports whether ext is one of the served container formats.
func IsVideoExtension(ext string) bool {
	_, ok := contentTypes[strings.ToLower(ext)]
	return ok
}

// Extensions returns the served extensions in a stable order.
func Extensions() []string {
	return []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}
}
