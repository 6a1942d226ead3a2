// Package compiler implements Ember's single-pass Pratt compiler: it
// reads tokens from pkg/lexer and emits bytecode directly into a
// pkg/chunk.Chunk, with no intermediate syntax tree. It is a
// precedence-climbing parser driven by a fixed parse-rule table keyed by
// token kind (getRule), nested function compilation via an explicit
// stack of compiler contexts (funcScope, chained through its enclosing
// field — never intrusive back-pointers owned by the callee, per this
// specification's design notes), and forward-jump patching for
// if/while/for/and/or.
//
// Grounded in the teacher's pkg/compiler (the overall shape: a Compiler
// struct walking source and emitting into a bytecode container) and in
// the teacher's pkg/parser (its Pratt-table approach to expression
// parsing), generalized from smog's two-stage parse-then-compile
// Smalltalk pipeline into this specification's single-pass emitter.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/ember-lang/ember/pkg/chunk"
	"github.com/ember-lang/ember/pkg/lexer"
	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/table"
	"github.com/ember-lang/ember/pkg/value"
)

// CompileError is one diagnostic produced during compilation: a source
// line, the lexeme (or "end of file"/nothing) the error was anchored to,
// and a message. Compile returns every CompileError accumulated across
// an invocation — panic-mode recovery (synchronize) lets later errors
// surface too instead of aborting at the first one.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

// Error implements error, rendering per spec.md §6:
// "[line N] Error at <lexeme|end of file>: <message>".
func (e CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Line, e.Where, e.Message)
}

// Precedence orders Ember's binary operators from loosest to tightest
// binding, per spec.md §4.4.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type prefixFn func(p *Compiler, canAssign bool)
type infixFn func(p *Compiler, canAssign bool)

// rule is one parse-rule-table entry: a token kind's prefix handler (if
// it can start an expression), infix handler (if it can continue one),
// and the precedence at which the infix handler binds.
type rule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

func getRule(kind lexer.Kind) rule {
	switch kind {
	case lexer.LeftParen:
		return rule{prefix: parseGrouping, infix: parseCall, precedence: PrecCall}
	case lexer.Minus:
		return rule{prefix: parseUnary, infix: parseBinary, precedence: PrecTerm}
	case lexer.Plus:
		return rule{infix: parseBinary, precedence: PrecTerm}
	case lexer.Slash:
		return rule{infix: parseBinary, precedence: PrecFactor}
	case lexer.Star:
		return rule{infix: parseBinary, precedence: PrecFactor}
	case lexer.Bang:
		return rule{prefix: parseUnary}
	case lexer.BangEqual:
		return rule{infix: parseBinary, precedence: PrecEquality}
	case lexer.EqualEqual:
		return rule{infix: parseBinary, precedence: PrecEquality}
	case lexer.Greater:
		return rule{infix: parseBinary, precedence: PrecComparison}
	case lexer.GreaterEqual:
		return rule{infix: parseBinary, precedence: PrecComparison}
	case lexer.Less:
		return rule{infix: parseBinary, precedence: PrecComparison}
	case lexer.LessEqual:
		return rule{infix: parseBinary, precedence: PrecComparison}
	case lexer.Identifier:
		return rule{prefix: parseVariableExpr}
	case lexer.String:
		return rule{prefix: parseString}
	case lexer.Number:
		return rule{prefix: parseNumber}
	case lexer.And:
		return rule{infix: parseAnd, precedence: PrecAnd}
	case lexer.Or:
		return rule{infix: parseOr, precedence: PrecOr}
	case lexer.False, lexer.Nil, lexer.True:
		return rule{prefix: parseLiteral}
	default:
		return rule{}
	}
}

// funcType distinguishes the implicit top-level "script" function from
// ordinary fun declarations, since only the latter permits `return expr`.
type funcType int

const (
	funcTypeScript funcType = iota
	funcTypeFunction
)

// localVar is one entry in a funcScope's locals stack: the lexeme it
// binds and its declaration depth, or -1 while its initializer is still
// being compiled (so `var a = a;` in the same scope is caught as reading
// an uninitialized local).
type localVar struct {
	name  string
	depth int
}

// funcScope is one compiler context: the state needed to compile a
// single function body (or the top-level script). Nested `fun`
// declarations push a new funcScope chained to the enclosing one via
// enclosing; popping on completion returns the built function object to
// the parent scope, which then emits a Constant for it.
type funcScope struct {
	enclosing  *funcScope
	function   *object.Function
	kind       funcType
	locals     []localVar
	scopeDepth int
}

func newFuncScope(enclosing *funcScope, name string, kind funcType) *funcScope {
	var nameObj *object.String
	if name != "" {
		nameObj = object.NewString(name)
	}
	fn := object.NewFunction(nameObj, 0)
	fn.Chunk = chunk.New()
	s := &funcScope{enclosing: enclosing, function: fn, kind: kind}
	// Slot 0 is always reserved, matching the VM's call-frame convention
	// that slot 0 holds the callee itself.
	s.locals = append(s.locals, localVar{name: "", depth: 0})
	return s
}

// Compiler is the parser: current/previous tokens, error accumulation,
// the string interner shared with the VM, and the active funcScope
// (itself the head of the enclosing-scope chain).
type Compiler struct {
	lex       *lexer.Lexer
	current   lexer.Token
	previous  lexer.Token
	hadError  bool
	panicMode bool
	errors    []CompileError
	strings   *table.Strings
	scope     *funcScope
}

// Compile compiles source into a top-level function object ("script")
// whose chunk the VM can run directly, interning all string constants
// through interner. On any compile error, the returned function is nil
// and every accumulated CompileError is returned.
func Compile(source string, interner *table.Strings) (*object.Function, []CompileError) {
	p := &Compiler{lex: lexer.New(source), strings: interner}
	p.scope = newFuncScope(nil, "", funcTypeScript)

	p.advance()
	for !p.check(lexer.Eof) {
		p.declaration()
	}
	p.consume(lexer.Eof, "Expect end of expression.")

	fn := p.endCompiler()
	if p.hadError {
		return nil, p.errors
	}
	return fn, nil
}

func (p *Compiler) currentChunk() *chunk.Chunk {
	return p.scope.function.Chunk.(*chunk.Chunk)
}

// --- token stream -----------------------------------------------------

func (p *Compiler) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.NextToken()
		if p.current.Kind != lexer.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Compiler) check(kind lexer.Kind) bool {
	return p.current.Kind == kind
}

func (p *Compiler) match(kind lexer.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Compiler) consume(kind lexer.Kind, message string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *Compiler) errorAtCurrent(message string) { p.errorAt(p.current, message) }
func (p *Compiler) errorAtPrevious(message string) { p.errorAt(p.previous, message) }

func (p *Compiler) errorAt(tok lexer.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	var where string
	switch tok.Kind {
	case lexer.Eof:
		where = "end of file"
	case lexer.Error:
		where = ""
	default:
		where = tok.Lexeme
	}
	p.errors = append(p.errors, CompileError{Line: tok.Line, Where: where, Message: message})
}

// synchronize skips tokens after a panic-mode error until just past a
// ';' or the start of a new statement-introducer keyword, so one
// syntactic fault does not cascade into a flood of spurious errors.
func (p *Compiler) synchronize() {
	p.panicMode = false
	for p.current.Kind != lexer.Eof {
		if p.previous.Kind == lexer.Semicolon {
			return
		}
		switch p.current.Kind {
		case lexer.Class, lexer.Fun, lexer.Var, lexer.For, lexer.If, lexer.While, lexer.Print, lexer.Return:
			return
		}
		p.advance()
	}
}

// --- emission helpers ---------------------------------------------------

func (p *Compiler) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *Compiler) emitOp(op chunk.Opcode) {
	p.currentChunk().WriteOp(op, p.previous.Line)
}

func (p *Compiler) emitBytes(op chunk.Opcode, operand byte) {
	p.emitOp(op)
	p.emitByte(operand)
}

func (p *Compiler) emitConstant(v value.Value) {
	idx, err := p.currentChunk().AddConstant(v)
	if err != nil {
		p.errorAtPrevious(err.Error())
		return
	}
	p.emitBytes(chunk.OpConstant, byte(idx))
}

// emitJump appends a jump opcode with a placeholder 16-bit offset and
// returns the instruction's index, to be passed to patchJump once the
// jump's target is known.
func (p *Compiler) emitJump(op chunk.Opcode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return p.currentChunk().Len() - 3
}

func (p *Compiler) patchJump(offset int) {
	if err := p.currentChunk().PatchJump(offset); err != nil {
		p.errorAtPrevious(err.Error())
	}
}

func (p *Compiler) emitLoop(loopStart int) {
	if err := p.currentChunk().EmitLoop(loopStart, p.previous.Line); err != nil {
		p.errorAtPrevious(err.Error())
	}
}

// emitReturn always emits Nil followed by Return, matching spec.md
// §4.4's "emit_return (always emits Nil then Return)" — a bare `fun`
// falling off the end of its body returns nil.
func (p *Compiler) emitReturn() {
	p.emitOp(chunk.OpNil)
	p.emitOp(chunk.OpReturn)
}

func (p *Compiler) endCompiler() *object.Function {
	p.emitReturn()
	fn := p.scope.function
	p.scope = p.scope.enclosing
	return fn
}

func (p *Compiler) beginScope() { p.scope.scopeDepth++ }

func (p *Compiler) endScope() {
	p.scope.scopeDepth--
	for len(p.scope.locals) > 0 && p.scope.locals[len(p.scope.locals)-1].depth > p.scope.scopeDepth {
		p.emitOp(chunk.OpPop)
		p.scope.locals = p.scope.locals[:len(p.scope.locals)-1]
	}
}

// --- variables ----------------------------------------------------------

func (p *Compiler) identifierConstant(name lexer.Token) int {
	str := p.strings.Intern(name.Lexeme)
	idx, err := p.currentChunk().AddConstant(value.ObjValue(str))
	if err != nil {
		p.errorAtPrevious(err.Error())
	}
	return idx
}

func (p *Compiler) addLocal(name lexer.Token) {
	if len(p.scope.locals) >= 256 {
		p.errorAtPrevious("Too many local variables in function.")
		return
	}
	p.scope.locals = append(p.scope.locals, localVar{name: name.Lexeme, depth: -1})
}

// declareVariable records a local declaration (global declarations need
// no bookkeeping here — they're resolved by name at runtime). Duplicate
// declaration in the same scope is an error; the walk stops as soon as it
// reaches a local belonging to an enclosing scope, per spec.md §4.4 and
// its "is_local scope check" design note — this depends on locals being
// pushed in declaration order, which addLocal preserves.
func (p *Compiler) declareVariable() {
	if p.scope.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := len(p.scope.locals) - 1; i >= 0; i-- {
		local := p.scope.locals[i]
		if local.depth != -1 && local.depth < p.scope.scopeDepth {
			break
		}
		if local.name == name.Lexeme {
			p.errorAtPrevious("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *Compiler) parseVariable(errMessage string) int {
	p.consume(lexer.Identifier, errMessage)
	p.declareVariable()
	if p.scope.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *Compiler) markInitialized() {
	if p.scope.scopeDepth == 0 {
		return
	}
	p.scope.locals[len(p.scope.locals)-1].depth = p.scope.scopeDepth
}

func (p *Compiler) defineVariable(global int) {
	if p.scope.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(chunk.OpDefGlobal, byte(global))
}

// resolveLocal walks scope's locals from the top down, so that the
// innermost shadowing declaration wins. Returns -1 if name isn't a local
// in this scope (the caller then falls back to treating it as global).
func (p *Compiler) resolveLocal(scope *funcScope, name lexer.Token) int {
	for i := len(scope.locals) - 1; i >= 0; i-- {
		local := scope.locals[i]
		if local.name == name.Lexeme {
			if local.depth == -1 {
				p.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *Compiler) namedVariable(name lexer.Token, canAssign bool) {
	var getOp, setOp chunk.Opcode
	arg := p.resolveLocal(p.scope, name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = p.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}
	if canAssign && p.match(lexer.Equal) {
		p.expression()
		p.emitBytes(setOp, byte(arg))
	} else {
		p.emitBytes(getOp, byte(arg))
	}
}

// --- expressions ----------------------------------------------------------

// parsePrecedence is the Pratt parser's core loop (spec.md §4.4): consume
// a token, dispatch its prefix rule, then keep consuming infix operators
// whose precedence is at least prec. can_assign flows down so that only
// an expression reached at <= Assignment precedence may be the target of
// `=` — this is what makes `a + b = c` a parse error (b's variable
// handler sees canAssign = false, because `+` descends at Factor) while
// `x = y` compiles as an assignment.
func (p *Compiler) parsePrecedence(prec Precedence) {
	p.advance()
	prefix := getRule(p.previous.Kind).prefix
	if prefix == nil {
		p.errorAtPrevious("Expected expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infix := getRule(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(lexer.Equal) {
		p.errorAtPrevious("Invalid assignment target.")
	}
}

func (p *Compiler) expression() {
	p.parsePrecedence(PrecAssignment)
}

func parseNumber(p *Compiler, _ bool) {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.errorAtPrevious("Invalid number literal.")
		return
	}
	p.emitConstant(value.NumberValue(n))
}

func parseString(p *Compiler, _ bool) {
	raw := p.previous.Lexeme
	content := raw[1 : len(raw)-1] // strip surrounding quotes
	str := p.strings.Intern(content)
	p.emitConstant(value.ObjValue(str))
}

func parseLiteral(p *Compiler, _ bool) {
	switch p.previous.Kind {
	case lexer.False:
		p.emitOp(chunk.OpFalse)
	case lexer.Nil:
		p.emitOp(chunk.OpNil)
	case lexer.True:
		p.emitOp(chunk.OpTrue)
	}
}

func parseGrouping(p *Compiler, _ bool) {
	p.expression()
	p.consume(lexer.RightParen, "Expect ')' after expression.")
}

func parseUnary(p *Compiler, _ bool) {
	opKind := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch opKind {
	case lexer.Bang:
		p.emitOp(chunk.OpNot)
	case lexer.Minus:
		p.emitOp(chunk.OpNegate)
	}
}

// parseBinary emits the right operand at one precedence level tighter
// than the operator's own, giving left-associativity, then rewrites the
// non-equal comparisons into two opcodes per spec.md §4.4: `!=` becomes
// Equal;Not, `>=` becomes Less;Not, `<=` becomes Greater;Not.
func parseBinary(p *Compiler, _ bool) {
	opKind := p.previous.Kind
	r := getRule(opKind)
	p.parsePrecedence(r.precedence + 1)

	switch opKind {
	case lexer.BangEqual:
		p.emitOp(chunk.OpEqual)
		p.emitOp(chunk.OpNot)
	case lexer.EqualEqual:
		p.emitOp(chunk.OpEqual)
	case lexer.Greater:
		p.emitOp(chunk.OpGreater)
	case lexer.GreaterEqual:
		p.emitOp(chunk.OpLess)
		p.emitOp(chunk.OpNot)
	case lexer.Less:
		p.emitOp(chunk.OpLess)
	case lexer.LessEqual:
		p.emitOp(chunk.OpGreater)
		p.emitOp(chunk.OpNot)
	case lexer.Plus:
		p.emitOp(chunk.OpAdd)
	case lexer.Minus:
		p.emitOp(chunk.OpSubtract)
	case lexer.Star:
		p.emitOp(chunk.OpMultiply)
	case lexer.Slash:
		p.emitOp(chunk.OpDivide)
	}
}

// parseAnd short-circuits: if the left operand is falsey, skip the right
// operand entirely, leaving the falsey left value as the result.
func parseAnd(p *Compiler, _ bool) {
	endJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

// parseOr short-circuits the opposite way: if the left operand is
// truthy, skip the right operand and keep the left value.
func parseOr(p *Compiler, _ bool) {
	elseJump := p.emitJump(chunk.OpJumpIfFalse)
	endJump := p.emitJump(chunk.OpJump)
	p.patchJump(elseJump)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func parseCall(p *Compiler, _ bool) {
	argCount := p.argumentList()
	p.emitBytes(chunk.OpCall, argCount)
}

func (p *Compiler) argumentList() byte {
	count := 0
	if !p.check(lexer.RightParen) {
		for {
			p.expression()
			if count == 255 {
				p.errorAtPrevious("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.consume(lexer.RightParen, "Expect ')' after arguments.")
	return byte(count)
}

func parseVariableExpr(p *Compiler, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

// --- declarations & statements --------------------------------------------

func (p *Compiler) declaration() {
	switch {
	case p.match(lexer.Fun):
		p.funDeclaration()
	case p.match(lexer.Var):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Compiler) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized() // a function may recursively call itself
	p.function(funcTypeFunction)
	p.defineVariable(global)
}

// function compiles one fun body in a fresh funcScope, then emits a
// Constant in the enclosing chunk for the built function object.
func (p *Compiler) function(kind funcType) {
	name := p.previous.Lexeme
	enclosing := p.scope
	p.scope = newFuncScope(enclosing, name, kind)
	p.beginScope()

	p.consume(lexer.LeftParen, "Expect '(' after function name.")
	if !p.check(lexer.RightParen) {
		for {
			p.scope.function.Arity++
			if p.scope.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.consume(lexer.RightParen, "Expect ')' after parameters.")
	p.consume(lexer.LeftBrace, "Expect '{' before function body.")
	p.block()

	fn := p.endCompiler() // restores p.scope to enclosing
	idx, err := p.currentChunk().AddConstant(value.ObjValue(fn))
	if err != nil {
		p.errorAtPrevious(err.Error())
		return
	}
	p.emitBytes(chunk.OpConstant, byte(idx))
}

func (p *Compiler) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(lexer.Equal) {
		p.expression()
	} else {
		p.emitOp(chunk.OpNil)
	}
	p.consume(lexer.Semicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Compiler) statement() {
	switch {
	case p.match(lexer.Print):
		p.printStatement()
	case p.match(lexer.For):
		p.forStatement()
	case p.match(lexer.If):
		p.ifStatement()
	case p.match(lexer.Return):
		p.returnStatement()
	case p.match(lexer.While):
		p.whileStatement()
	case p.match(lexer.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Compiler) printStatement() {
	p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after value.")
	p.emitOp(chunk.OpPrint)
}

func (p *Compiler) block() {
	for !p.check(lexer.RightBrace) && !p.check(lexer.Eof) {
		p.declaration()
	}
	p.consume(lexer.RightBrace, "Expect '}' after block.")
}

func (p *Compiler) ifStatement() {
	p.consume(lexer.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(lexer.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.statement()

	elseJump := p.emitJump(chunk.OpJump)
	p.patchJump(thenJump)
	p.emitOp(chunk.OpPop)

	if p.match(lexer.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Compiler) whileStatement() {
	loopStart := p.currentChunk().Len()
	p.consume(lexer.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(lexer.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(chunk.OpPop)
}

// forStatement desugars into the equivalent while loop, exactly per
// spec.md §4.4's jump bookkeeping: the increment clause (if present) is
// compiled once but executed after the body on every iteration, by
// jumping over it on first entry and looping back through it afterward.
func (p *Compiler) forStatement() {
	p.beginScope()
	p.consume(lexer.LeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(lexer.Semicolon):
		// no initializer
	case p.match(lexer.Var):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := p.currentChunk().Len()
	exitJump := -1
	if !p.match(lexer.Semicolon) {
		p.expression()
		p.consume(lexer.Semicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(chunk.OpJumpIfFalse)
		p.emitOp(chunk.OpPop)
	}

	if !p.check(lexer.RightParen) {
		bodyJump := p.emitJump(chunk.OpJump)
		incrementStart := p.currentChunk().Len()
		p.expression()
		p.emitOp(chunk.OpPop)
		p.consume(lexer.RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	} else {
		p.consume(lexer.RightParen, "Expect ')' after for clauses.")
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(chunk.OpPop)
	}
	p.endScope()
}

func (p *Compiler) returnStatement() {
	if p.scope.kind == funcTypeScript {
		p.errorAtPrevious("Can't return from top-level code.")
	}
	if p.match(lexer.Semicolon) {
		p.emitReturn()
		return
	}
	p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after return value.")
	p.emitOp(chunk.OpReturn)
}

func (p *Compiler) expressionStatement() {
	p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after expression.")
	p.emitOp(chunk.OpPop)
}
