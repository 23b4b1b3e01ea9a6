package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// resultVar is the single binding a program must assign.
const resultVar = "resultado"

// Program is a parsed analysis program: a chain of calls applied left
// to right, starting from the full snapshot table.
type Program struct {
	Chain []Call
}

// Call is one verb application in the chain.
type Call struct {
	Name string
	Args []Arg
}

// Arg kinds.
const (
	argCondition = iota
	argColumn
	argNumber
	argCall
)

// Arg is one call argument.
type Arg struct {
	Kind   int
	Cond   Condition
	Column string
	Number float64
	Call   *Call
}

// Condition compares a column against a literal.
type Condition struct {
	Column   string
	Op       string // ==, !=, >, >=, <, <=
	Text     string
	Number   float64
	IsNumber bool
}

// ParseProgram parses program text in the closed chained-call grammar:
//
//	resultado = filtrar(status_venda == "CONCLUIDA").somar(valor_total_venda)
//
// A program that does not assign resultado fails with ErrResultMissing;
// any other malformation fails with ExecutionError.
func ParseProgram(text string) (*Program, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	name, ok := p.acceptIdent()
	if !ok || name != resultVar {
		return nil, ErrResultMissing
	}
	if !p.accept("=") {
		return nil, ErrResultMissing
	}

	var chain []Call
	for {
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		chain = append(chain, *call)
		if !p.accept(".") {
			break
		}
	}
	if !p.atEOF() {
		return nil, execErrorf("unexpected %q after call chain", p.peek().val)
	}
	return &Program{Chain: chain}, nil
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokNumber
	tokString
	tokSymbol
	tokEOF
)

type token struct {
	kind tokKind
	val  string
	num  float64
}

func lex(text string) ([]token, error) {
	var toks []token
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '"' || r == '\'':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, execErrorf("unterminated string literal")
			}
			toks = append(toks, token{kind: tokString, val: string(runes[i+1 : j])})
			i = j + 1
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			j := i + 1
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			// A trailing dot belongs to the chain, not the number.
			if runes[j-1] == '.' {
				j--
			}
			lit := string(runes[i:j])
			n, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, execErrorf("bad number literal %q", lit)
			}
			toks = append(toks, token{kind: tokNumber, val: lit, num: n})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			toks = append(toks, token{kind: tokIdent, val: string(runes[i:j])})
			i = j
		case strings.ContainsRune("=!<>", r):
			j := i + 1
			if j < len(runes) && runes[j] == '=' {
				j++
			}
			toks = append(toks, token{kind: tokSymbol, val: string(runes[i:j])})
			i = j
		case strings.ContainsRune("().,", r):
			toks = append(toks, token{kind: tokSymbol, val: string(r)})
			i++
		default:
			return nil, execErrorf("unexpected character %q", string(r))
		}
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) atEOF() bool { return p.peek().kind == tokEOF }

func (p *parser) accept(sym string) bool {
	if t := p.peek(); t.kind == tokSymbol && t.val == sym {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptIdent() (string, bool) {
	if t := p.peek(); t.kind == tokIdent {
		p.pos++
		return t.val, true
	}
	return "", false
}

func (p *parser) expect(sym string) error {
	if !p.accept(sym) {
		return execErrorf("expected %q, found %q", sym, p.peek().val)
	}
	return nil
}

func (p *parser) parseCall() (*Call, error) {
	name, ok := p.acceptIdent()
	if !ok {
		return nil, execErrorf("expected verb, found %q", p.peek().val)
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}

	call := &Call{Name: name}
	if p.accept(")") {
		return call, nil
	}
	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, *arg)
		if p.accept(",") {
			continue
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return call, nil
	}
}

func (p *parser) parseArg() (*Arg, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.pos++
		return &Arg{Kind: argNumber, Number: t.num}, nil
	case tokIdent:
		p.pos++
		name := t.val
		// Lookahead decides between a bare column, a nested call, and
		// the left side of a comparison.
		next := p.peek()
		if next.kind == tokSymbol && next.val == "(" {
			p.pos--
			inner, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			return &Arg{Kind: argCall, Call: inner}, nil
		}
		if next.kind == tokSymbol && isComparisonOp(next.val) {
			p.pos++
			return p.parseConditionRHS(name, next.val)
		}
		return &Arg{Kind: argColumn, Column: name}, nil
	default:
		return nil, execErrorf("unexpected argument %q", t.val)
	}
}

func (p *parser) parseConditionRHS(column, op string) (*Arg, error) {
	t := p.peek()
	cond := Condition{Column: column, Op: op}
	switch t.kind {
	case tokString:
		cond.Text = t.val
	case tokNumber:
		cond.Number = t.num
		cond.IsNumber = true
	case tokIdent:
		// Bare-word comparison value, e.g. status == CONCLUIDA.
		cond.Text = t.val
	default:
		return nil, execErrorf("expected comparison value, found %q", t.val)
	}
	p.pos++
	return &Arg{Kind: argCondition, Cond: cond}, nil
}

func isComparisonOp(s string) bool {
	switch s {
	case "==", "!=", ">", ">=", "<", "<=":
		return true
	}
	return false
}

// String renders the program back to source form, used in logs.
func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString(resultVar + " = ")
	for i := range p.Chain {
		if i > 0 {
			sb.WriteByte('.')
		}
		writeCall(&sb, &p.Chain[i])
	}
	return sb.String()
}

func writeCall(sb *strings.Builder, c *Call) {
	sb.WriteString(c.Name)
	sb.WriteByte('(')
	for i := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		a := &c.Args[i]
		switch a.Kind {
		case argNumber:
			sb.WriteString(strconv.FormatFloat(a.Number, 'f', -1, 64))
		case argColumn:
			sb.WriteString(a.Column)
		case argCall:
			writeCall(sb, a.Call)
		case argCondition:
			if a.Cond.IsNumber {
				fmt.Fprintf(sb, "%s %s %s", a.Cond.Column, a.Cond.Op,
					strconv.FormatFloat(a.Cond.Number, 'f', -1, 64))
			} else {
				fmt.Fprintf(sb, "%s %s %q", a.Cond.Column, a.Cond.Op, a.Cond.Text)
			}
		}
	}
	sb.WriteByte(')')
}
