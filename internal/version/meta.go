package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MetaName is the name of the meta tag announcing the catalog version of a
// running instance.
const MetaName = "reel-version"

// ErrNoMeta is returned when a document carries no usable version tag.
var ErrNoMeta = errors.New("no reel-version meta tag")

var (
	metaTagRe   = regexp.MustCompile(`(?is)<meta\s[^>]*>`)
	metaNameRe  = regexp.MustCompile(`(?is)\bname\s*=\s*["']?` + regexp.QuoteMeta(MetaName) + `["'\s/>]`)
	metaValueRe = regexp.MustCompile(`(?is)\bcontent\s*=\s*["']?\s*(\d+)`)
)

// MetaTag renders the tag for catalog version n.
func MetaTag(n int) string {
	return fmt.Sprintf(`<meta name="%s" content="%d">`, MetaName, n)
}

// ParseMeta returns the catalog version announced by doc. Attribute order
// does not matter; the first matching tag wins.
func ParseMeta(doc []byte) (int, error) {
	for _, tag := range metaTagRe.FindAll(doc, -1) {
		if !metaNameRe.Match(tag) {
			continue
		}
		m := metaValueRe.FindSubmatch(tag)
		if m == nil {
			return 0, fmt.Errorf("%w: tag has no numeric content", ErrNoMeta)
		}
		n, err := strconv.Atoi(string(m[1]))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNoMeta, err)
		}
		return n, nil
	}
	return 0, ErrNoMeta
}
