package helpers

import (
	"regexp"
	"strings"
)

var imageSizeRe = regexp.MustCompile(`s=\d+x\d+$`)

// SplitFirst splits target on the first occurrence of separator and returns
// both halves. ok is false when the separator is absent.
func SplitFirst(target string, separator string) (string, string, bool) {
	idx := strings.Index(target, separator)
	if idx < 0 {
		return target, "", false
	}
	return target[:idx], target[idx+len(separator):], true
}

// ResizeImageURL rewrites the trailing s=WxH size parameter of an OLX image
// URL to the requested size. URLs without the parameter pass through untouched.
func ResizeImageURL(url string, size string) string {
	if imageSizeRe.MatchString(url) {
		return imageSizeRe.ReplaceAllString(url, "s="+size)
	}
	return url
}

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
