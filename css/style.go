// Package css reads inline style declarations found in pasted markup. Only
// what page processing needs is interpreted: lengths (spacer heights, widths),
// font sizes, colors, weights and alignment.
package css

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw       string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value     float64 // Numeric value if applicable
	Unit      string  // Unit if applicable: "em", "px", "%", "pt", etc.
	Keyword   string  // Keyword if applicable: "bold", "italic", "center", etc.
	Important bool
}

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Keyword == "" && v.Raw != "" {
		first := rune(v.Raw[0])
		return unicode.IsDigit(first) || first == '.' || first == '-' || first == '+'
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Pixels converts absolute and font relative lengths to CSS pixels assuming
// 16px root font size. Percentages and unknown units are not convertible.
func (v Value) Pixels() (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	switch v.Unit {
	case "", "px":
		return v.Value, true
	case "pt":
		return v.Value * 4 / 3, true
	case "pc":
		return v.Value * 16, true
	case "in":
		return v.Value * 96, true
	case "cm":
		return v.Value * 96 / 2.54, true
	case "mm":
		return v.Value * 96 / 25.4, true
	case "em", "rem":
		return v.Value * 16, true
	}
	return 0, false
}

// Declaration is a single property: value pair.
type Declaration struct {
	Property string
	Value    Value
}

// Style keeps declarations in source order.
type Style []Declaration

// Get returns value of the property, later declarations win unless earlier
// one is important.
func (s Style) Get(property string) (Value, bool) {
	var (
		found Value
		ok    bool
	)
	for _, d := range s {
		if d.Property != property {
			continue
		}
		if ok && found.Important && !d.Value.Important {
			continue
		}
		found, ok = d.Value, true
	}
	return found, ok
}

// String serializes style back into inline form.
func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		val := d.Value.Raw
		if d.Value.Important {
			val += " !important"
		}
		parts = append(parts, d.Property+": "+val)
	}
	return strings.Join(parts, "; ")
}

// Parser reads inline style attribute values.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new inline style parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// ParseStyle parses value of a style attribute. Parsing stops at the first
// error, declarations read so far are returned.
func (p *Parser) ParseStyle(style string) Style {
	var out Style
	if strings.TrimSpace(style) == "" {
		return out
	}

	parser := css.NewParser(parse.NewInput(strings.NewReader(style)), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err != io.EOF {
				p.log.Debug("Inline style parse error", zap.String("style", style), zap.Error(err))
			}
			return out
		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			out = append(out, Declaration{
				Property: strings.ToLower(string(data)),
				Value:    parsePropertyValue(values),
			})
		case css.CustomPropertyGrammar:
			continue
		}
	}
}

// ParseStyle parses inline style without logging.
func ParseStyle(style string) Style {
	return NewParser(nil).ParseStyle(style)
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	var val Value

	// strip trailing "!important"
	if n := len(tokens); n >= 2 && tokens[n-1].TokenType == css.IdentToken &&
		strings.EqualFold(string(tokens[n-1].Data), "important") {
		i := n - 2
		for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
			i--
		}
		if i >= 0 && tokens[i].TokenType == css.DelimToken && string(tokens[i].Data) == "!" {
			val.Important = true
			tokens = tokens[:i]
		}
	}

	var rawParts []string
	significant := make([]css.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
			significant = append(significant, t)
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	val.Raw = strings.TrimSpace(strings.Join(rawParts, ""))

	if len(significant) != 1 {
		// functions (rgb(), url()) and shorthands are kept as raw keyword
		val.Keyword = val.Raw
		return val
	}

	t := significant[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(string(t.Data))
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	case css.HashToken:
		val.Keyword = strings.ToLower(string(t.Data))
	default:
		val.Keyword = val.Raw
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseLength parses attribute style length ("20", "20px", "1.5em").
func ParseLength(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	num, unit := parseDimension(s)
	if unit == "" && !strings.ContainsAny(s[:1], "0123456789.+-") {
		return 0, false
	}
	return Value{Raw: s, Value: num, Unit: unit}.Pixels()
}
