package sanitize

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Validate reports markup constructs the marketplace would reject. It looks
// at tags as written, so implied elements added by HTML parsers (tbody) are
// not reported. Nil means markup is compliant.
func (s *Sanitizer) Validate(markup string) []string {
	var (
		problems []string
		seen     = make(map[string]bool)
	)
	report := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if !seen[msg] {
			seen[msg] = true
			problems = append(problems, msg)
		}
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return problems
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "thead", "tbody", "tfoot", "colgroup":
				report("table section <%s> is not allowed", tok.Data)
				continue
			}
			if _, ok := s.allowed[tok.Data]; !ok {
				report("tag <%s> is not allowed in %s area", tok.Data, s.opts.Target)
				continue
			}
			for _, a := range tok.Attr {
				if !attrAllowed(s.allowed, tok.Data, a.Key, a.Val) {
					report("attribute %q on <%s> is not allowed", a.Key, tok.Data)
				}
			}
		}
	}
}
