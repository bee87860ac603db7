package entity

import (
	"fmt"
	"regexp"
	"strings"
)

const maxFilenameLen = 20

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFilename lowercases the name, replaces whitespace runs with "-" and keeps the
// first 20 characters. Two names sharing those 20 characters map to the same value.
func SanitizeFilename(name string) string {
	s := strings.ToLower(whitespaceRun.ReplaceAllString(name, "-"))
	r := []rune(s)
	if len(r) > maxFilenameLen {
		r = r[:maxFilenameLen]
	}
	return string(r)
}

func VideoStorageKey(userID, videoID, filename string) string {
	return fmt.Sprintf("videos/%s/%s-%s", userID, videoID, SanitizeFilename(filename))
}

func FramesArchiveKey(userID, videoID string) string {
	return fmt.Sprintf("frames/%s/%s.zip", userID, videoID)
}
