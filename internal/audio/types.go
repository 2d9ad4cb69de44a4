package audio

import (
	"mime"
	"path/filepath"
	"strings"
)

// Types the engines accept; the system mime table is not guaranteed to list them.
var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".mpga": "audio/mpeg",
	".mpeg": "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
}

// Ext returns the lower-cased extension of name if it is a known audio type.
func Ext(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := contentTypes[ext]
	return ext, ok
}

// ContentType guesses the MIME type of an audio file from its name.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
