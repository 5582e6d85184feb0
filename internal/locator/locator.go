// Package locator formats and parses the human-facing URLs of stored files.
//
// Spreadsheets live at <base>/spreadsheets/d/<id>, collections at
// <base>/drive/folders/<id>, and other files at <base>/file/d/<id>. Ids are
// path-escaped so backends may use ids containing slashes.
package locator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// DefaultBase is the URL prefix used by the bundled backends.
const DefaultBase = "https://sheets.local"

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/d/([^/]+)`),
	regexp.MustCompile(`/folders/([^/]+)`),
}

// Format returns the locator of a file.
func Format(base, kind, id string) string {
	base = strings.TrimRight(base, "/")
	escaped := url.PathEscape(id)
	switch kind {
	case types.KindSpreadsheet:
		return base + "/spreadsheets/d/" + escaped
	case types.KindCollection:
		return base + "/drive/folders/" + escaped
	default:
		return base + "/file/d/" + escaped
	}
}

// Parse extracts the file id from a locator. Strings that are not absolute
// URLs, or that carry no id, yield ErrInvalidLocator.
func Parse(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidLocator, raw)
	}
	path := u.EscapedPath()
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(path); m != nil {
			id, err := url.PathUnescape(m[1])
			if err != nil || id == "" {
				break
			}
			return id, nil
		}
	}
	if id := u.Query().Get("id"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrInvalidLocator, raw)
}
