package importer

import (
	"bytes"
	"regexp"
)

// legacyHeaderRegex matches the retired first line `# filename.extension`.
var legacyHeaderRegex = regexp.MustCompile(`^#\s+([\w-]+\.\w{1,10})$`)

// parseLegacyHeader returns the file name declared by a retired header
// line, if the first line of src is one.
func parseLegacyHeader(src []byte) (string, bool) {
	line := src
	if end := bytes.IndexAny(src, "\n\r"); end >= 0 {
		line = src[:end]
	}
	m := legacyHeaderRegex.FindSubmatch(line)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
