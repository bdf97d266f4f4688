package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseCSS parses a stylesheet of simple selectors (.class, #id, or a comma list of
// them) and "key: value;" declarations. At-rules and other selectors are skipped.
// Later rules override earlier ones for the same property.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	p := css.NewParser(parse.NewInputString(content), false)
	var selectors []string
	var props map[string]string
	atDepth := 0
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return sheet, fmt.Errorf("parse css: %w", err)
			}
			return sheet, nil
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			atDepth--
		case css.QualifiedRuleGrammar:
			selectors = append(selectors, splitSelectors(tokensText(p.Values()))...)
		case css.BeginRulesetGrammar:
			selectors = append(selectors, splitSelectors(tokensText(p.Values()))...)
			props = make(map[string]string)
		case css.DeclarationGrammar:
			if props != nil {
				props[strings.ToLower(string(data))] = tokensText(p.Values())
			}
		case css.EndRulesetGrammar:
			if atDepth == 0 {
				for _, sel := range selectors {
					if simpleSelector(sel) {
						sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Props: props})
					}
				}
			}
			selectors, props = nil, nil
		}
	}
}

func tokensText(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

func splitSelectors(s string) []string {
	var out []string
	for _, sel := range strings.Split(s, ",") {
		if sel = strings.TrimSpace(sel); sel != "" {
			out = append(out, sel)
		}
	}
	return out
}

func simpleSelector(sel string) bool {
	if len(sel) < 2 || (sel[0] != '.' && sel[0] != '#') {
		return false
	}
	return !strings.ContainsAny(sel[1:], " .#>+~:[")
}
