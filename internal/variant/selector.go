package variant

import (
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ErrInvalidSelector is returned for variant selectors outside the supported
// subset: `&`, attribute tests, built-in pseudo-classes, `:not()` and lists.
var ErrInvalidSelector = errors.New("invalid variant selector")

type token struct {
	tt   css.TokenType
	data string
}

func lexSelector(s string) []token {
	l := css.NewLexer(parse.NewInputString(s))
	var toks []token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return toks
		}
		if tt == css.CommentToken {
			continue
		}
		toks = append(toks, token{tt: tt, data: string(data)})
	}
}

// ParseSelector compiles a short-form variant selector such as
// `&[aria-selected="true"]` or `&:hover, &[data-state="open"]`.
func ParseSelector(s string) (Predicate, error) {
	p := &selectorParser{src: s, toks: lexSelector(s)}
	pred, err := p.list()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek().data)
	}
	return pred, nil
}

type selectorParser struct {
	src  string
	toks []token
	pos  int
}

func (p *selectorParser) done() bool { return p.pos >= len(p.toks) }

func (p *selectorParser) peek() token {
	if p.done() {
		return token{tt: css.ErrorToken}
	}
	return p.toks[p.pos]
}

func (p *selectorParser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *selectorParser) skipSpace() {
	for !p.done() && p.peek().tt == css.WhitespaceToken {
		p.pos++
	}
}

func (p *selectorParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidSelector, p.src, fmt.Sprintf(format, args...))
}

func (p *selectorParser) list() (Predicate, error) {
	var alts anyOf
	for {
		p.skipSpace()
		c, err := p.compound()
		if err != nil {
			return nil, err
		}
		alts = append(alts, c)
		p.skipSpace()
		if p.peek().tt != css.CommaToken {
			break
		}
		p.next()
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return alts, nil
}

func (p *selectorParser) compound() (Predicate, error) {
	if t := p.peek(); t.tt == css.DelimToken && t.data == "&" {
		p.next()
	}
	var parts allOf
	for {
		t := p.peek()
		switch t.tt {
		case css.LeftBracketToken:
			p.next()
			pred, err := p.attribute()
			if err != nil {
				return nil, err
			}
			parts = append(parts, pred)
		case css.ColonToken:
			p.next()
			pred, err := p.pseudoClass()
			if err != nil {
				return nil, err
			}
			parts = append(parts, pred)
		case css.WhitespaceToken:
			// Whitespace followed by more selector text is a descendant combinator.
			save := p.pos
			p.skipSpace()
			switch p.peek().tt {
			case css.ErrorToken, css.CommaToken, css.RightParenthesisToken:
				p.pos = save
				return p.finish(parts)
			}
			return nil, p.errorf("descendant combinators are not supported")
		case css.ErrorToken, css.CommaToken, css.RightParenthesisToken:
			return p.finish(parts)
		default:
			return nil, p.errorf("unexpected %q", t.data)
		}
	}
}

func (p *selectorParser) finish(parts allOf) (Predicate, error) {
	switch len(parts) {
	case 0:
		return nil, p.errorf("empty selector")
	case 1:
		return parts[0], nil
	}
	return parts, nil
}

func (p *selectorParser) attribute() (Predicate, error) {
	p.skipSpace()
	name := p.next()
	if name.tt != css.IdentToken {
		return nil, p.errorf("expected attribute name")
	}
	p.skipSpace()
	t := p.next()
	if t.tt == css.RightBracketToken {
		return attrPresent{name: name.data}, nil
	}
	if t.tt != css.DelimToken || t.data != "=" {
		return nil, p.errorf("only [attr] and [attr=value] are supported")
	}
	p.skipSpace()
	val := p.next()
	var value string
	switch val.tt {
	case css.StringToken:
		value = unquote(val.data)
	case css.IdentToken, css.NumberToken:
		value = val.data
	default:
		return nil, p.errorf("expected attribute value")
	}
	p.skipSpace()
	if p.next().tt != css.RightBracketToken {
		return nil, p.errorf("expected ]")
	}
	return attrEquals{name: name.data, value: value}, nil
}

func (p *selectorParser) pseudoClass() (Predicate, error) {
	t := p.next()
	switch t.tt {
	case css.IdentToken:
		name := strings.ToLower(t.data)
		if !IsBuiltin(name) && name != "enabled" {
			return nil, p.errorf("unsupported pseudo-class :%s", name)
		}
		return pseudo(name), nil
	case css.FunctionToken:
		if strings.ToLower(t.data) != "not(" {
			return nil, p.errorf("unsupported function %s", t.data)
		}
		inner, err := p.list()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.next().tt != css.RightParenthesisToken {
			return nil, p.errorf("expected )")
		}
		return not{inner: inner}, nil
	}
	return nil, p.errorf("expected pseudo-class")
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return strings.NewReplacer(`\"`, `"`, `\'`, `'`, `\\`, `\`).Replace(s)
}
