package service

import (
	"net/http"
	"strings"

	"github.com/h2non/filetype"
)

var allowedImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// imageExtension takes the extension from the URL path, keeps at most 4 characters and
// falls back to jpg for anything outside the image whitelist.
func imageExtension(rawURL string) string {
	p, _, _ := strings.Cut(rawURL, "?")
	i := strings.LastIndex(p, ".")
	if i < 0 {
		return "jpg"
	}
	ext := p[i+1:]
	if len(ext) > 4 {
		ext = ext[:4]
	}
	ext = strings.ToLower(ext)
	if !allowedImageExtensions[ext] {
		return "jpg"
	}
	return ext
}

// DetectContentType sniffs the leading bytes of a file. Bytes are never re-encoded.
func DetectContentType(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return http.DetectContentType(head)
	}
	return kind.MIME.Value
}
