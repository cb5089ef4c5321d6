package utils

import "regexp"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SafeFileName replaces all characters which are not safe in file names.
func SafeFileName(name string) string {
	ret := unsafeChars.ReplaceAllString(name, "_")
	if ret == "" || ret == "." || ret == ".." {
		return "_"
	}
	return ret
}
