// Package mediaref resolves user-supplied video links to canonical media IDs.
package mediaref

import (
	"errors"
	"regexp"

	"github.com/weiawesome/wes-io-live/watchparty/internal/domain"
)

// ErrNoMatch is returned when a link carries no recognizable media ID.
var ErrNoMatch = errors.New("no media id in link")

// idPattern matches an 11-character ID after a "v=" query parameter or a
// path separator, e.g. watch?v=dQw4w9WgXcQ or youtu.be/dQw4w9WgXcQ.
var idPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// Extractor resolves a link to a media ID.
type Extractor interface {
	Extract(link string) (domain.MediaID, error)
}

// RegexpExtractor is the Extractor used in production.
type RegexpExtractor struct{}

func NewExtractor() RegexpExtractor {
	return RegexpExtractor{}
}

// Extract returns the first media ID found in link.
func (RegexpExtractor) Extract(link string) (domain.MediaID, error) {
	m := idPattern.FindStringSubmatch(link)
	if m == nil {
		return "", ErrNoMatch
	}
	return domain.MediaID(m[1]), nil
}

// IsMediaID reports whether s already is a canonical media ID.
func IsMediaID(s string) bool {
	return len(s) == 11 && idPattern.MatchString("/"+s)
}
