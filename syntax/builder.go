// Package syntax builds AST nodes from an ANTLR parse tree.
//
// The builder does not depend on a generated parser. It dispatches on the
// rule name of each context, looked up in the parser's rule name table, and
// reads children positionally. Rule shapes it understands:
//
//	program     : statement* EOF
//	statement   : (varDecl | assignment | call | ...) ';'?
//	block       : '{' statement* '}'
//	varDecl     : type IDENT ('=' expression)?
//	assignment  : IDENT '=' expression
//	type        : NAME '*'*
//	expression  : primary | expression OP expression | '(' expression ')'
//	literal     : INT | FLOAT | CHAR | STRING | 'true' | 'false'
//	timeLiteral : NUMBER UNIT | DURATION
//	varRef      : IDENT
//	call        : IDENT '(' arguments? ')'
//	arguments   : expression (',' expression)*
//	functionDef : type IDENT '(' params? ')' block
//	functionDec : type IDENT '(' params? ')'
//	params      : param (',' param)* (',' '...')?
//	param       : type IDENT
//	return      : 'return' expression?
//	if          : 'if' '(' expression ')' block else*
//	else        : 'else' ('if' '(' expression ')')? block
//	while       : 'while' '(' expression ')' block
//	for         : 'for' '(' init? ';' expression? ';' step? ')' block
//	loopControl : 'break' | 'continue'
//	event       : 'event' IDENT '(' params? ')' 'every' expression ('limit' INT)? block
//	exit        : 'exit' IDENT
//
// Any other rule, or a known rule with an unexpected shape, is a
// structural error "not a valid <rule>".
package syntax

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antlr4-go/antlr/v4"

	"github.com/pulse-lang/core-compiler/ast"
	"github.com/pulse-lang/core-compiler/diagnostics"
	"github.com/pulse-lang/core-compiler/types"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "return": true,
	"break": true, "continue": true, "event": true, "every": true,
	"limit": true, "exit": true, "true": true, "false": true,
}

// Builder converts parse trees into AST nodes.
type Builder struct {
	ruleNames []string
	handlers  map[string]func(antlr.ParserRuleContext) ast.Node
}

// NewBuilder creates a builder for trees produced by a parser whose rule
// name table is ruleNames.
func NewBuilder(ruleNames []string) *Builder {
	b := &Builder{ruleNames: ruleNames}
	b.handlers = map[string]func(antlr.ParserRuleContext) ast.Node{
		"statement":   b.statement,
		"block":       b.blockNode,
		"varDecl":     b.varDecl,
		"assignment":  b.assignment,
		"expression":  b.expression,
		"literal":     b.literal,
		"timeLiteral": b.timeLiteral,
		"varRef":      b.varRef,
		"call":        b.call,
		"functionDef": b.functionDef,
		"functionDec": b.functionDec,
		"return":      b.returnStmt,
		"if":          b.ifStmt,
		"else":        b.elseNode,
		"while":       b.while,
		"for":         b.forStmt,
		"loopControl": b.loopControl,
		"event":       b.event,
		"exit":        b.exit,
	}
	return b
}

// Build converts a program tree into its top-level statements. Any other
// rule is built as a single statement.
func (b *Builder) Build(tree antlr.ParseTree) (stmts []ast.Node, err error) {
	defer diagnostics.Recover(&err)

	ctx := b.context(tree)
	if b.ruleName(ctx) == "program" {
		return b.statements(ctx), nil
	}
	return []ast.Node{b.node(ctx)}, nil
}

// ============================================================================
// TREE ACCESS
// ============================================================================

func (b *Builder) context(tree antlr.Tree) antlr.ParserRuleContext {
	ctx, ok := tree.(antlr.ParserRuleContext)
	if !ok {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "expected a rule context, got %T", tree)
	}
	return ctx
}

func (b *Builder) ruleName(ctx antlr.ParserRuleContext) string {
	idx := ctx.GetRuleIndex()
	if idx < 0 || idx >= len(b.ruleNames) {
		diagnostics.Fatal(diagnostics.PhaseStructural, pos(ctx), "unknown rule index %d", idx)
	}
	return b.ruleNames[idx]
}

func (b *Builder) node(ctx antlr.ParserRuleContext) ast.Node {
	name := b.ruleName(ctx)
	h, ok := b.handlers[name]
	if !ok {
		diagnostics.Fatal(diagnostics.PhaseStructural, pos(ctx), "not a valid statement or expression: rule %s", name)
	}
	return h(ctx)
}

func (b *Builder) invalid(ctx antlr.ParserRuleContext) {
	diagnostics.Fatal(diagnostics.PhaseStructural, pos(ctx), "not a valid %s", b.ruleName(ctx))
}

func pos(ctx antlr.ParserRuleContext) ast.Pos {
	tok := ctx.GetStart()
	if tok == nil {
		return ast.Pos{}
	}
	return ast.Pos{Line: tok.GetLine(), Column: tok.GetColumn() + 1}
}

// rules returns the rule children of ctx in order.
func rules(ctx antlr.ParserRuleContext) []antlr.ParserRuleContext {
	var out []antlr.ParserRuleContext
	for _, child := range ctx.GetChildren() {
		if rc, ok := child.(antlr.ParserRuleContext); ok {
			out = append(out, rc)
		}
	}
	return out
}

// terminals returns the token texts of ctx's terminal children. An error
// node is fatal.
func terminals(ctx antlr.ParserRuleContext) []string {
	var out []string
	for _, child := range ctx.GetChildren() {
		switch t := child.(type) {
		case antlr.ErrorNode:
			diagnostics.Fatal(diagnostics.PhaseStructural, pos(ctx), "syntax error at %q", t.GetText())
		case antlr.TerminalNode:
			out = append(out, t.GetSymbol().GetText())
		}
	}
	return out
}

func has(toks []string, text string) bool {
	for _, t := range toks {
		if t == text {
			return true
		}
	}
	return false
}

// ident returns the first identifier token of ctx.
func (b *Builder) ident(ctx antlr.ParserRuleContext) string {
	for _, t := range terminals(ctx) {
		if identRe.MatchString(t) && !keywords[t] {
			return t
		}
	}
	b.invalid(ctx)
	return ""
}

func (b *Builder) rulesNamed(ctx antlr.ParserRuleContext, name string) []antlr.ParserRuleContext {
	var out []antlr.ParserRuleContext
	for _, rc := range rules(ctx) {
		if b.ruleName(rc) == name {
			out = append(out, rc)
		}
	}
	return out
}

func (b *Builder) ruleNamed(ctx antlr.ParserRuleContext, name string) antlr.ParserRuleContext {
	if rs := b.rulesNamed(ctx, name); len(rs) > 0 {
		return rs[0]
	}
	return nil
}

// ============================================================================
// STATEMENTS
// ============================================================================

func (b *Builder) statements(ctx antlr.ParserRuleContext) []ast.Node {
	var out []ast.Node
	for _, rc := range rules(ctx) {
		out = append(out, b.node(rc))
	}
	return out
}

func (b *Builder) statement(ctx antlr.ParserRuleContext) ast.Node {
	rs := rules(ctx)
	if len(rs) != 1 {
		b.invalid(ctx)
	}
	return b.node(rs[0])
}

func (b *Builder) block(ctx antlr.ParserRuleContext) *ast.CodeBlock {
	if ctx == nil || b.ruleName(ctx) != "block" {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "not a valid block")
	}
	return &ast.CodeBlock{At: pos(ctx), Stmts: b.statements(ctx)}
}

func (b *Builder) blockNode(ctx antlr.ParserRuleContext) ast.Node {
	return b.block(ctx)
}

// lastBlock returns the trailing block child of ctx.
func (b *Builder) lastBlock(ctx antlr.ParserRuleContext) *ast.CodeBlock {
	rs := rules(ctx)
	if len(rs) == 0 {
		b.invalid(ctx)
	}
	return b.block(rs[len(rs)-1])
}

func (b *Builder) typeOf(ctx antlr.ParserRuleContext) *types.Type {
	if ctx == nil {
		diagnostics.Fatal(diagnostics.PhaseStructural, ast.Pos{}, "not a valid type")
	}
	name := strings.Join(terminals(ctx), "")
	t, ok := types.Lookup(name)
	if !ok {
		diagnostics.Fatal(diagnostics.PhaseStructural, pos(ctx), "not a valid type: %q", name)
	}
	return t
}

func (b *Builder) varDecl(ctx antlr.ParserRuleContext) ast.Node {
	typ := b.typeOf(b.ruleNamed(ctx, "type"))
	name := b.ident(ctx)
	if !has(terminals(ctx), "=") {
		return &ast.VariableDec{At: pos(ctx), Type: typ, Name: name}
	}
	rs := rules(ctx)
	if len(rs) != 2 {
		b.invalid(ctx)
	}
	return &ast.VariableAssign{At: pos(ctx), Type: typ, Name: name, Value: b.node(rs[1])}
}

func (b *Builder) assignment(ctx antlr.ParserRuleContext) ast.Node {
	rs := rules(ctx)
	if len(rs) != 1 || !has(terminals(ctx), "=") {
		b.invalid(ctx)
	}
	return &ast.VariableAssign{At: pos(ctx), Type: types.VoidType, Name: b.ident(ctx), Value: b.node(rs[0])}
}

func (b *Builder) returnStmt(ctx antlr.ParserRuleContext) ast.Node {
	n := &ast.Return{At: pos(ctx)}
	switch rs := rules(ctx); len(rs) {
	case 0:
	case 1:
		n.Expr = b.node(rs[0])
	default:
		b.invalid(ctx)
	}
	return n
}

// ============================================================================
// EXPRESSIONS
// ============================================================================

func (b *Builder) expression(ctx antlr.ParserRuleContext) ast.Node {
	rs := rules(ctx)
	toks := terminals(ctx)

	switch {
	case len(rs) == 1 && len(toks) == 0:
		return b.node(rs[0])
	case len(rs) == 1 && len(toks) == 2 && toks[0] == "(" && toks[1] == ")":
		return b.node(rs[0])
	case len(rs) == 2 && len(toks) == 1:
		return &ast.BinaryExpr{At: pos(ctx), Op: toks[0], Left: b.node(rs[0]), Right: b.node(rs[1])}
	case len(rs) == 0 && len(toks) == 1:
		// bare token alternative
		if identRe.MatchString(toks[0]) && !keywords[toks[0]] {
			return &ast.VariableRef{At: pos(ctx), Name: toks[0]}
		}
		return b.literalText(ctx, toks[0])
	}
	b.invalid(ctx)
	return nil
}

func (b *Builder) varRef(ctx antlr.ParserRuleContext) ast.Node {
	return &ast.VariableRef{At: pos(ctx), Name: b.ident(ctx)}
}

func (b *Builder) literal(ctx antlr.ParserRuleContext) ast.Node {
	toks := terminals(ctx)
	if len(toks) != 1 {
		b.invalid(ctx)
	}
	return b.literalText(ctx, toks[0])
}

func (b *Builder) literalText(ctx antlr.ParserRuleContext, text string) ast.Node {
	var lit *ast.Literal
	switch {
	case strings.HasPrefix(text, `"`):
		s, err := strconv.Unquote(text)
		if err != nil {
			b.invalid(ctx)
		}
		lit = ast.StringLit(s)
	case strings.HasPrefix(text, "'"):
		s, err := strconv.Unquote(text)
		if err != nil || len(s) != 1 {
			b.invalid(ctx)
		}
		lit = ast.CharLit(s[0])
	case text == "true" || text == "false":
		lit = ast.BoolLit(text == "true")
	case strings.ContainsAny(text, ".eE") && !strings.HasPrefix(text, "0x"):
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			b.invalid(ctx)
		}
		lit = ast.FloatLit(float32(f))
	default:
		i, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			b.invalid(ctx)
		}
		lit = ast.IntLit(int32(i))
	}
	lit.At = pos(ctx)
	return lit
}

func (b *Builder) timeLiteral(ctx antlr.ParserRuleContext) ast.Node {
	text := strings.Join(terminals(ctx), "")
	split := strings.IndexFunc(text, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if split <= 0 {
		b.invalid(ctx)
	}
	mag, err := strconv.ParseFloat(text[:split], 64)
	if err != nil {
		b.invalid(ctx)
	}
	return &ast.TimeLiteral{At: pos(ctx), Magnitude: mag, Unit: text[split:]}
}

func (b *Builder) call(ctx antlr.ParserRuleContext) ast.Node {
	n := &ast.FunctionCall{At: pos(ctx), Name: b.ident(ctx)}
	if args := b.ruleNamed(ctx, "arguments"); args != nil {
		for _, rc := range rules(args) {
			n.Args = append(n.Args, b.node(rc))
		}
	}
	return n
}

// ============================================================================
// FUNCTIONS
// ============================================================================

// params returns the parameter list of ctx and whether it ends in '...'.
func (b *Builder) params(ctx antlr.ParserRuleContext) ([]ast.Param, bool) {
	list := b.ruleNamed(ctx, "params")
	if list == nil {
		return nil, false
	}
	var out []ast.Param
	for _, p := range b.rulesNamed(list, "param") {
		out = append(out, ast.Param{Type: b.typeOf(b.ruleNamed(p, "type")), Name: b.ident(p)})
	}
	return out, has(terminals(list), "...")
}

func (b *Builder) functionDef(ctx antlr.ParserRuleContext) ast.Node {
	params, variadic := b.params(ctx)
	if variadic {
		diagnostics.Fatal(diagnostics.PhaseStructural, pos(ctx), "not a valid functionDef: only declarations may be variadic")
	}
	return &ast.FunctionDef{
		At:     pos(ctx),
		Name:   b.ident(ctx),
		Params: params,
		Return: b.typeOf(b.ruleNamed(ctx, "type")),
		Body:   b.lastBlock(ctx),
	}
}

func (b *Builder) functionDec(ctx antlr.ParserRuleContext) ast.Node {
	params, variadic := b.params(ctx)
	return &ast.FunctionDec{
		At:       pos(ctx),
		Name:     b.ident(ctx),
		Params:   params,
		Return:   b.typeOf(b.ruleNamed(ctx, "type")),
		Variadic: variadic,
	}
}

// ============================================================================
// CONTROL FLOW
// ============================================================================

// condBlock returns the condition and block of an 'if', 'else if' or
// 'while' context.
func (b *Builder) condBlock(ctx antlr.ParserRuleContext) (ast.Node, *ast.CodeBlock) {
	var body []antlr.ParserRuleContext
	for _, rc := range rules(ctx) {
		if b.ruleName(rc) != "else" {
			body = append(body, rc)
		}
	}
	if len(body) != 2 {
		b.invalid(ctx)
	}
	return b.node(body[0]), b.block(body[1])
}

func (b *Builder) ifStmt(ctx antlr.ParserRuleContext) ast.Node {
	cond, then := b.condBlock(ctx)
	n := &ast.If{At: pos(ctx), Cond: cond, Then: then}
	for _, e := range b.rulesNamed(ctx, "else") {
		n.Elses = append(n.Elses, b.elseNode(e).(*ast.Else))
	}
	return n
}

func (b *Builder) elseNode(ctx antlr.ParserRuleContext) ast.Node {
	if has(terminals(ctx), "if") {
		cond, block := b.condBlock(ctx)
		return &ast.Else{At: pos(ctx), Cond: cond, Block: block}
	}
	rs := rules(ctx)
	if len(rs) != 1 {
		b.invalid(ctx)
	}
	return &ast.Else{At: pos(ctx), Block: b.block(rs[0])}
}

func (b *Builder) while(ctx antlr.ParserRuleContext) ast.Node {
	cond, block := b.condBlock(ctx)
	return &ast.While{At: pos(ctx), Cond: cond, Block: block}
}

// forStmt splits the header on its two ';' tokens.
func (b *Builder) forStmt(ctx antlr.ParserRuleContext) ast.Node {
	n := &ast.For{At: pos(ctx)}
	semis := 0
	var header []antlr.ParserRuleContext
	for _, child := range ctx.GetChildren() {
		switch c := child.(type) {
		case antlr.TerminalNode:
			if c.GetText() == ";" {
				semis++
			}
		case antlr.ParserRuleContext:
			if b.ruleName(c) == "block" {
				n.Block = b.block(c)
				continue
			}
			header = append(header, c)
			switch semis {
			case 0:
				n.Init = b.node(c)
			case 1:
				n.Cond = b.node(c)
			default:
				n.Step = b.node(c)
			}
		}
	}
	if semis != 2 || n.Block == nil || len(header) > 3 {
		b.invalid(ctx)
	}
	return n
}

func (b *Builder) loopControl(ctx antlr.ParserRuleContext) ast.Node {
	toks := terminals(ctx)
	switch {
	case has(toks, "break"):
		return &ast.LoopControl{At: pos(ctx), Kind: ast.Break}
	case has(toks, "continue"):
		return &ast.LoopControl{At: pos(ctx), Kind: ast.Continue}
	}
	b.invalid(ctx)
	return nil
}

// ============================================================================
// EVENTS
// ============================================================================

func (b *Builder) event(ctx antlr.ParserRuleContext) ast.Node {
	params, variadic := b.params(ctx)
	if variadic {
		b.invalid(ctx)
	}
	n := &ast.Event{At: pos(ctx), Name: b.ident(ctx), Params: params}

	var rest []antlr.ParserRuleContext
	for _, rc := range rules(ctx) {
		if b.ruleName(rc) != "params" {
			rest = append(rest, rc)
		}
	}
	if len(rest) != 2 {
		b.invalid(ctx)
	}
	n.Period = b.node(rest[0])
	n.Handler = b.block(rest[1])

	toks := terminals(ctx)
	for i, t := range toks {
		if t != "limit" {
			continue
		}
		if i+1 >= len(toks) {
			b.invalid(ctx)
		}
		limit, err := strconv.Atoi(toks[i+1])
		if err != nil {
			b.invalid(ctx)
		}
		n.Limit = limit
	}
	return n
}

func (b *Builder) exit(ctx antlr.ParserRuleContext) ast.Node {
	return &ast.Exit{At: pos(ctx), Event: b.ident(ctx)}
}
