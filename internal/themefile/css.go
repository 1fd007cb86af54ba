package themefile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

const (
	attrTheme = "data-theme"
	attrSkin  = "data-skin"
)

// errUnsupportedSelector marks selectors outside the theme grammar. They are
// skipped with a warning rather than failing the theme.
var errUnsupportedSelector = errors.New("unsupported selector")

// cssSheet is one CSS source being read into a theme.
type cssSheet struct {
	l      *Loader
	ld     *load
	name   string
	src    string
	cursor int // byte offset of the last located rule, for line numbers
}

func (l *Loader) parseCSS(ld *load, name string, src []byte) {
	sh := &cssSheet{l: l, ld: ld, name: name, src: string(src)}
	p := css.NewParser(parse.NewInputBytes(src), false)

	var selectors []string
	for {
		gt, _, data := p.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				ld.fail(fmt.Errorf("%w: %s: %v", ErrSyntax, name, err))
			}
			return

		case css.AtRuleGrammar:
			sh.atRule(string(data), p.Values())

		case css.BeginAtRuleGrammar:
			if at := string(data); at != "@custom-variant" {
				sh.ld.warn(sh.name, "skipping %s block", at)
				skipBlock(p)
				continue
			}
			sh.longVariant(p, p.Values())

		case css.QualifiedRuleGrammar:
			selectors = append(selectors, selectorText(data, p.Values()))

		case css.BeginRulesetGrammar:
			selectors = append(selectors, selectorText(data, p.Values()))
			sh.ruleset(p, selectors)
			selectors = nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			sh.ld.warn(sh.name, "declaration %s outside any rule", data)
		}
	}
}

func (sh *cssSheet) atRule(name string, values []css.Token) {
	switch name {
	case "@import":
		target := firstString(values)
		p, err := importPath(sh.name, target)
		if err != nil {
			sh.ld.fail(fmt.Errorf("%s: %w", sh.name, err))
			return
		}
		sh.l.log.Debug("Following import", zap.String("from", sh.name), zap.String("import", p))
		sh.l.file(sh.ld, p)

	case "@extends":
		parent := firstString(values)
		if parent == "" {
			sh.ld.fail(fmt.Errorf("%w: %s: @extends needs a theme id", ErrSyntax, sh.name))
			return
		}
		sh.ld.setExtends(parent, sh.name)

	case "@custom-variant":
		vname, rest := splitName(values)
		sel := strings.TrimSpace(rest)
		if vname == "" || !strings.HasPrefix(sel, "(") || !strings.HasSuffix(sel, ")") {
			sh.ld.fail(fmt.Errorf("%w: %s: want @custom-variant name (selector);", ErrSyntax, sh.name))
			return
		}
		sh.ld.def.Variants = append(sh.ld.def.Variants, variant.Declaration{
			Name:     vname,
			Selector: strings.TrimSpace(sel[1 : len(sel)-1]),
		})

	default:
		sh.ld.warn(sh.name, "skipping %s", name)
	}
}

// longVariant reads `@custom-variant name { selector { @slot; } }`.
func (sh *cssSheet) longVariant(p *css.Parser, prelude []css.Token) {
	vname, _ := splitName(prelude)
	body, err := blockText(p)
	if err != nil {
		sh.ld.fail(fmt.Errorf("%s: @custom-variant %s: %w", sh.name, vname, err))
		return
	}
	if vname == "" {
		sh.ld.fail(fmt.Errorf("%w: %s: @custom-variant without a name", ErrSyntax, sh.name))
		return
	}
	blocks, err := parseVariantBlocks(body)
	if err != nil {
		sh.ld.fail(fmt.Errorf("%s: @custom-variant %s: %w", sh.name, vname, err))
		return
	}
	sh.ld.def.Variants = append(sh.ld.def.Variants, variant.Declaration{Name: vname, Blocks: blocks})
}

type declaration struct {
	hook  string
	value string
}

func (sh *cssSheet) ruleset(p *css.Parser, selectors []string) {
	var decls []declaration
	for done := false; !done; {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			done = true
		case css.CustomPropertyGrammar, css.DeclarationGrammar:
			prop := string(data)
			if !strings.HasPrefix(prop, "--") {
				sh.ld.warn(sh.name, "property %s is not a skin hook; only custom properties are themed", prop)
				continue
			}
			decls = append(decls, declaration{hook: prop[2:], value: tokensText(p.Values())})
		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			sh.ld.warn(sh.name, "nested blocks are not supported")
			skipBlock(p)
		}
	}

	for _, sel := range selectors {
		target, err := parseRuleSelector(sel)
		if errors.Is(err, errUnsupportedSelector) {
			sh.ld.warn(sh.name, "%v; rule skipped", err)
			continue
		}
		if err != nil {
			sh.ld.fail(fmt.Errorf("%s: %w", sh.name, err))
			continue
		}
		sh.ld.setID(target.theme, sh.name)
		line := sh.locate(target.raw)

		for _, d := range decls {
			v, err := theme.ParseValue(d.value)
			if err != nil {
				sh.ld.fail(fmt.Errorf("%s:%d: --%s: %w", sh.name, line, d.hook, err))
				continue
			}
			sh.ld.addRule(theme.Rule{
				Skin:     target.skin,
				Hook:     d.hook,
				Variants: variant.NewSet(target.variants...),
				Value:    v,
				Source:   sh.name,
				Line:     line,
			})
		}
	}
}

// locate returns the line of the next occurrence of needle after the last
// located rule. Rulesets are read in file order.
func (sh *cssSheet) locate(needle string) int {
	if needle == "" {
		return 0
	}
	i := strings.Index(sh.src[sh.cursor:], needle)
	if i < 0 {
		return 0
	}
	sh.cursor += i + len(needle)
	return strings.Count(sh.src[:sh.cursor-len(needle)], "\n") + 1
}

// ruleTarget is what a theme rule selector names.
type ruleTarget struct {
	theme    string
	skin     string
	variants []string
	raw      string // source text of the skin attribute value
}

// parseRuleSelector reads `[:root][data-theme="t"] [data-skin="s"]:v1:v2`.
// The root-scope compound is optional.
func parseRuleSelector(sel string) (ruleTarget, error) {
	compounds, err := splitCompounds(sel)
	if err != nil {
		return ruleTarget{}, err
	}
	var t ruleTarget
	switch len(compounds) {
	case 1:
	case 2:
		if err := readRootCompound(compounds[0], &t); err != nil {
			return ruleTarget{}, fmt.Errorf("%w %q: %v", errUnsupportedSelector, sel, err)
		}
	default:
		return ruleTarget{}, fmt.Errorf("%w %q: want a theme scope and a skin", errUnsupportedSelector, sel)
	}
	if err := readSkinCompound(compounds[len(compounds)-1], &t); err != nil {
		return ruleTarget{}, fmt.Errorf("%w %q: %v", errUnsupportedSelector, sel, err)
	}
	return t, nil
}

type selPart struct {
	pseudo string // ":name"
	attr   string // "[attr=value]"
	value  string
	raw    string
}

// splitCompounds lexes sel into whitespace-separated compounds of simple
// selectors.
func splitCompounds(sel string) ([][]selPart, error) {
	l := css.NewLexer(parse.NewInputString(sel))
	var (
		out [][]selPart
		cur []selPart
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			flush()
			return out, nil
		case css.WhitespaceToken:
			flush()
		case css.CommentToken:
		case css.ColonToken:
			tt, data = l.Next()
			if tt != css.IdentToken {
				return nil, fmt.Errorf("%w %q: only plain pseudo-classes", errUnsupportedSelector, sel)
			}
			cur = append(cur, selPart{pseudo: strings.ToLower(string(data))})
		case css.LeftBracketToken:
			p, err := readAttr(l)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", errUnsupportedSelector, sel, err)
			}
			cur = append(cur, p)
		default:
			return nil, fmt.Errorf("%w %q: unexpected %q", errUnsupportedSelector, sel, data)
		}
	}
}

func readAttr(l *css.Lexer) (selPart, error) {
	var p selPart
	tt, data := skipWS(l)
	if tt != css.IdentToken {
		return p, fmt.Errorf("attribute name expected")
	}
	p.attr = strings.ToLower(string(data))
	tt, data = skipWS(l)
	if tt == css.RightBracketToken {
		return p, nil
	}
	if tt != css.DelimToken || string(data) != "=" {
		return p, fmt.Errorf("only [attr=value] is supported")
	}
	tt, data = skipWS(l)
	switch tt {
	case css.StringToken, css.IdentToken:
		p.raw = string(data)
		p.value = unquote(p.raw)
	default:
		return p, fmt.Errorf("attribute value expected")
	}
	if tt, _ = skipWS(l); tt != css.RightBracketToken {
		return p, fmt.Errorf("unterminated attribute selector")
	}
	return p, nil
}

func readRootCompound(parts []selPart, t *ruleTarget) error {
	for _, p := range parts {
		switch {
		case p.pseudo == "root":
		case p.attr == attrTheme && p.value != "":
			t.theme = p.value
		default:
			return fmt.Errorf("theme scope must be :root and/or [%s=...]", attrTheme)
		}
	}
	return nil
}

func readSkinCompound(parts []selPart, t *ruleTarget) error {
	for _, p := range parts {
		switch {
		case p.attr == attrSkin && p.value != "" && t.skin == "":
			t.skin, t.raw = p.value, p.raw
		case p.attr == attrTheme && p.value != "" && t.theme == "" && t.skin == "":
			t.theme = p.value
		case p.pseudo != "" && t.skin != "":
			t.variants = append(t.variants, p.pseudo)
		default:
			return fmt.Errorf("want [%s=...] followed by variant pseudo-classes", attrSkin)
		}
	}
	if t.skin == "" {
		return fmt.Errorf("no [%s=...]", attrSkin)
	}
	return nil
}

func skipWS(l *css.Lexer) (css.TokenType, []byte) {
	for {
		tt, data := l.Next()
		if tt != css.WhitespaceToken && tt != css.CommentToken {
			return tt, data
		}
	}
}

// parseVariantBlocks reads the body of a long-form custom variant.
func parseVariantBlocks(body string) ([]variant.Block, error) {
	l := css.NewLexer(parse.NewInputString(body))
	slot, blocks, err := variantBody(l, false)
	if err != nil {
		return nil, err
	}
	if slot {
		blocks = append(blocks, variant.Block{Slot: true})
	}
	return blocks, nil
}

func variantBody(l *css.Lexer, nested bool) (bool, []variant.Block, error) {
	var (
		slot     bool
		children []variant.Block
		sel      strings.Builder
	)
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if nested {
				return false, nil, fmt.Errorf("%w: unterminated block", ErrSyntax)
			}
			if strings.TrimSpace(sel.String()) != "" {
				return false, nil, fmt.Errorf("%w: selector %q without a block", ErrSyntax, strings.TrimSpace(sel.String()))
			}
			return slot, children, nil
		case css.CommentToken:
		case css.AtKeywordToken:
			if string(data) != "@slot" {
				return false, nil, fmt.Errorf("%w: %s inside a custom variant", ErrSyntax, data)
			}
			slot = true
		case css.SemicolonToken:
		case css.LeftBraceToken:
			s, c, err := variantBody(l, true)
			if err != nil {
				return false, nil, err
			}
			children = append(children, variant.Block{Selector: strings.TrimSpace(sel.String()), Slot: s, Children: c})
			sel.Reset()
		case css.RightBraceToken:
			if !nested {
				return false, nil, fmt.Errorf("%w: unbalanced }", ErrSyntax)
			}
			return slot, children, nil
		default:
			sel.Write(data)
		}
	}
}

// blockText re-serializes the grammar stream of an at-rule block up to its
// end. Unknown at-rules reach us as raw tokens; nested rulesets as grammar.
func blockText(p *css.Parser) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return "", fmt.Errorf("%w: unterminated block", ErrSyntax)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if depth == 0 {
				return b.String(), nil
			}
			depth--
			b.WriteString("}")
		case css.BeginAtRuleGrammar:
			depth++
			b.Write(data)
			b.WriteString(" " + tokensText(p.Values()) + "{")
		case css.BeginRulesetGrammar:
			depth++
			b.WriteString(selectorText(data, p.Values()) + "{")
		case css.QualifiedRuleGrammar:
			b.WriteString(selectorText(data, p.Values()) + ",")
		case css.AtRuleGrammar:
			b.Write(data)
			b.WriteString(" " + tokensText(p.Values()) + ";")
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			b.Write(data)
			b.WriteString(":" + tokensText(p.Values()) + ";")
		case css.TokenGrammar:
			b.Write(data)
		}
	}
}

// skipBlock consumes tokens until the end of the current block.
func skipBlock(p *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// selectorText joins a selector's tokens. The grammar data is the token that
// ended the selector, not part of it.
func selectorText(data []byte, values []css.Token) string {
	var b strings.Builder
	if s := string(data); s != "{" && s != "," {
		b.WriteString(s)
	}
	for _, v := range values {
		b.Write(v.Data)
	}
	return strings.TrimSpace(b.String())
}

func tokensText(values []css.Token) string {
	var b strings.Builder
	for _, v := range values {
		b.Write(v.Data)
	}
	return strings.TrimSpace(b.String())
}

// firstString returns the first string, url or ident in values, unquoted.
func firstString(values []css.Token) string {
	for _, t := range values {
		switch t.TokenType {
		case css.StringToken, css.IdentToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := strings.TrimSuffix(strings.TrimPrefix(string(t.Data), "url("), ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// splitName returns the first ident of values and the text after it.
// `name(` lexes as a function token; its paren stays with the rest.
func splitName(values []css.Token) (string, string) {
	for i, t := range values {
		switch t.TokenType {
		case css.IdentToken:
			return string(t.Data), tokensText(values[i+1:])
		case css.FunctionToken:
			return strings.TrimSuffix(string(t.Data), "("), "(" + tokensText(values[i+1:])
		}
	}
	return "", ""
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
