package textbuf

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// SearchParams describes a find request as entered by a user.
type SearchParams struct {
	SearchString   string
	IsRegex        bool
	MatchCase      bool
	WordSeparators string
}

// SearchData is a compiled SearchParams.
type SearchData struct {
	Regex          *regexp.Regexp
	WordSeparators string
	SimpleSearch   string
}

// ParseSearchRequest compiles the parameters. It returns nil without
// an error when there is nothing to search for.
func (p SearchParams) ParseSearchRequest() (*SearchData, error) {
	if p.SearchString == "" {
		return nil, nil
	}

	pattern := p.SearchString
	if !p.IsRegex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if !p.MatchCase {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid search expression %q", p.SearchString)
	}

	data := &SearchData{
		Regex:          re,
		WordSeparators: p.WordSeparators,
	}
	if !p.IsRegex && p.MatchCase {
		data.SimpleSearch = p.SearchString
	}
	return data, nil
}

func (d *SearchData) isSeparator(r rune) bool {
	return strings.ContainsRune(d.WordSeparators, r)
}

// isWholeWord checks the match boundaries [start, end) against
// the word separators. Without separators every match is valid.
func (d *SearchData) isWholeWord(line []rune, start, end int) bool {
	if d.WordSeparators == "" {
		return true
	}

	leftOK := start == 0 || d.isSeparator(line[start-1]) || d.isSeparator(line[start])
	rightOK := end == len(line) || d.isSeparator(line[end]) || d.isSeparator(line[end-1])
	return leftOK && rightOK
}
