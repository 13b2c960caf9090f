// Package compiler implements embr's single-pass Pratt compiler (spec
// §4.3): it consumes tokens from a scanner.Scanner and emits bytecode
// directly into the current value.Chunk as it parses — there is no
// intermediate AST. Structurally grounded in kristofer-smog's
// pkg/compiler.Compiler (a Compiler struct walking an already-built AST)
// and funvibe-funxy's internal/vm.Compiler, whose Local/Upvalue/
// FunctionType/enclosing-chain field names this package's FuncState
// reuses almost verbatim — but collapsed into a single parse-and-emit
// pass per spec §4.3/§9, since the distilled spec's defining simplification
// ("single-pass compile-and-emit... there is no AST") rules out both
// teachers' AST-walking shape.
package compiler

import (
	"strconv"

	"github.com/embr-lang/embr/internal/scanner"
	"github.com/embr-lang/embr/internal/value"
)

// Precedence is the Pratt ladder from spec §4.3, low to high.
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
	PrecBitwise
	PrecUnary
	PrecCall
	PrecPrimary
)

// FunctionType distinguishes what kind of code body a FuncState compiles.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

// Local is one entry of a FuncState's locals array (spec §4.3): a depth of
// -1 means "declared but not yet initialized," used to catch self-
// reference in a variable's own initializer.
type Local struct {
	Name       string
	Depth      int
	IsCaptured bool
}

// upvalueRef is one entry of a FuncState's upvalues array (spec §4.3):
// either a local slot in the immediately enclosing function, or an
// upvalue already captured by it.
type upvalueRef struct {
	Index   byte
	IsLocal bool
}

const maxLocals = 256
const maxUpvalues = 256
const maxParams = 255

// FuncState is one function-compilation frame: one per nested function or
// the top-level script (spec §2, §4.3). FuncStates form a stack via
// enclosing, mirroring funvibe-funxy's compiler.Compiler.enclosing chain.
type FuncState struct {
	enclosing *FuncState
	function  *value.Function
	fnType    FunctionType

	locals     []Local
	upvalues   []upvalueRef
	scopeDepth int

	lastOpcode   value.OpCode
	lastConstant *value.Value
}

// ClassState tracks whether `super` is valid in the body currently being
// compiled (spec §4.3).
type ClassState struct {
	enclosing     *ClassState
	hasSuperclass bool
}

// ImportHook is called by the compiler when it encounters `import name;`
// (spec §4.3): it must load and fully compile-and-execute the named
// source before the outer compile continues. Wiring it as a callback
// (rather than importing internal/vm or internal/interp directly) keeps
// this package free of a dependency cycle — internal/interp constructs
// the closure, since it alone has both the loader and the running VM.
type ImportHook func(name string) error

// Compiler drives the single-pass Pratt parse-and-emit over one top-level
// source unit.
type Compiler struct {
	sc      *scanner.Scanner
	heap    *value.Heap
	strings *value.Strings

	previous scanner.Token
	current  scanner.Token

	cur   *FuncState
	class *ClassState

	hadError  bool
	panicMode bool
	errs      []*CompileError

	importHook ImportHook
}

// New creates a Compiler for one source unit, ready to compile a top-level
// script (FunctionType TypeScript).
func New(source string, heap *value.Heap, strings *value.Strings, importHook ImportHook) *Compiler {
	c := &Compiler{
		sc:         scanner.New(source),
		heap:       heap,
		strings:    strings,
		importHook: importHook,
	}
	c.pushFunc(TypeScript, "")
	return c
}

// Compile runs the full compile and, on success, returns the top-level
// script Function. On failure it returns the accumulated CompileErrors.
func (c *Compiler) Compile() (*value.Function, []*CompileError) {
	c.advance()
	for !c.matchTok(scanner.TokenEOF) {
		c.declaration()
	}
	fn := c.endFunc()
	if c.hadError {
		return nil, c.errs
	}
	return fn, nil
}

// ---- function-frame management ----

func (c *Compiler) pushFunc(fnType FunctionType, name string) {
	fn := value.NewFunction(c.heap, name)
	fn.Chunk = value.NewChunk()
	fs := &FuncState{enclosing: c.cur, function: fn, fnType: fnType}
	// Slot 0 is reserved: "this" for methods/initializers, unnamed
	// otherwise (spec §3 invariant).
	if fnType == TypeMethod || fnType == TypeInitializer {
		fs.locals = append(fs.locals, Local{Name: "this", Depth: 0})
	} else {
		fs.locals = append(fs.locals, Local{Name: "", Depth: 0})
	}
	c.cur = fs
}

// endFunc closes the top-level script's FuncState. Nested functions use
// endFuncKeepingUpvalues instead, since their caller (function()) still
// needs the popped frame's upvalue list to emit OP_CLOSURE's trailing
// bytes against the enclosing chunk.
func (c *Compiler) endFunc() *value.Function {
	c.emitReturn()
	fn := c.cur.function
	fn.UpvalueCount = len(c.cur.upvalues)
	c.cur = c.cur.enclosing
	return fn
}

func (c *Compiler) currentChunk() *value.Chunk { return c.cur.function.Chunk }

// ---- token stream ----

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.sc.ScanToken()
		if c.current.Type != scanner.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t scanner.TokenType) bool { return c.current.Type == t }

func (c *Compiler) matchTok(t scanner.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t scanner.TokenType, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok scanner.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errs = append(c.errs, &CompileError{Line: tok.Line, Message: msg})
}

// synchronize discards tokens after an error until a statement-starting
// keyword or past a `;` (spec §4.3's panic-mode recovery).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != scanner.TokenEOF {
		if c.previous.Type == scanner.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case scanner.TokenClass, scanner.TokenFn, scanner.TokenVar,
			scanner.TokenFor, scanner.TokenIf, scanner.TokenWhile,
			scanner.TokenOut, scanner.TokenReturn, scanner.TokenImport:
			return
		}
		c.advance()
	}
}

// ---- byte emission ----

func (c *Compiler) emit(op value.OpCode) {
	c.currentChunk().Write(byte(op), c.previous.Line)
	c.cur.lastOpcode = op
}

func (c *Compiler) emitOperand(b byte) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitBytes(op value.OpCode, operand byte) {
	c.emit(op)
	c.emitOperand(operand)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.currentChunk().WriteConstant(v, c.previous.Line)
	if len(c.currentChunk().Constants) > 0xFF {
		c.cur.lastOpcode = value.OpConstantLong
	} else {
		c.cur.lastOpcode = value.OpConstant
	}
	c.cur.lastConstant = &v
}

// emitLoop writes OP_LOOP with a backward 16-bit offset (spec §4.3, §6).
func (c *Compiler) emitLoop(loopStart int) {
	c.emit(value.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xFFFF {
		c.error("Loop body too large.")
	}
	c.emitOperand(byte(offset >> 8))
	c.emitOperand(byte(offset))
}

// emitJump writes a forward jump opcode with a placeholder 16-bit operand
// and returns the operand's offset, to be patched later.
func (c *Compiler) emitJump(op value.OpCode) int {
	c.emit(op)
	c.emitOperand(0xFF)
	c.emitOperand(0xFF)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xFFFF {
		c.error("Too much code to jump over.")
	}
	c.currentChunk().Code[offset] = byte(jump >> 8)
	c.currentChunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitReturn() {
	if c.cur.fnType == TypeInitializer {
		// Implicit return in an initializer loads slot 0 (the instance),
		// not nil (spec §4.3).
		c.emitBytes(value.OpGetLocal, 0)
	} else {
		c.emit(value.OpNil)
	}
	c.emit(value.OpReturn)
}

// ---- constants / names ----

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.currentChunk().AddConstant(v)
	if idx > 0xFF {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// identifierConstant interns tok's lexeme and adds it as a name constant.
// Name constants (used by globals/properties/methods/classes) are always
// single-byte indices — there is no long form for them (spec §6).
func (c *Compiler) identifierConstant(tok scanner.Token) byte {
	str := c.strings.Intern(tok.Lexeme)
	return c.makeConstant(value.Obj(str))
}

func identifiersEqual(a, b string) bool { return a == b }

// ---- scopes ----

func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

// endScope pops every local declared in the scope being closed, emitting
// OP_CLOSE_UPVALUE for ones captured by a nested function and OP_POP
// otherwise (spec §4.3).
func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	for len(c.cur.locals) > 0 && c.cur.locals[len(c.cur.locals)-1].Depth > c.cur.scopeDepth {
		last := c.cur.locals[len(c.cur.locals)-1]
		if last.IsCaptured {
			c.emit(value.OpCloseUpvalue)
		} else {
			c.emit(value.OpPop)
		}
		c.cur.locals = c.cur.locals[:len(c.cur.locals)-1]
	}
}

// ---- variable declaration & resolution ----

func (c *Compiler) addLocal(name string) {
	if len(c.cur.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.cur.locals = append(c.cur.locals, Local{Name: name, Depth: -1})
}

func (c *Compiler) declareVariable(tok scanner.Token) {
	if c.cur.scopeDepth == 0 {
		return // global: resolved by name at runtime
	}
	for i := len(c.cur.locals) - 1; i >= 0; i-- {
		l := c.cur.locals[i]
		if l.Depth != -1 && l.Depth < c.cur.scopeDepth {
			break
		}
		if identifiersEqual(l.Name, tok.Lexeme) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(tok.Lexeme)
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(scanner.TokenIdentifier, errMsg)
	c.declareVariable(c.previous)
	if c.cur.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	if c.cur.scopeDepth == 0 {
		return
	}
	c.cur.locals[len(c.cur.locals)-1].Depth = c.cur.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.cur.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(value.OpDefineGlobal, global)
}

// resolveLocal returns the slot of a local named name in fs, -1 if absent.
// Depth==-1 (declared but uninitialized) is reported as a self-reference
// error rather than silently falling through to an enclosing scope (spec
// §4.3 resolution rule 1).
func (c *Compiler) resolveLocal(fs *FuncState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if identifiersEqual(fs.locals[i].Name, name) {
			if fs.locals[i].Depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *FuncState, index byte, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{Index: index, IsLocal: isLocal})
	return len(fs.upvalues) - 1
}

// resolveUpvalue implements spec §4.3 resolution rule 2: recurse into the
// enclosing compiler; a local found there is marked captured and added as
// an isLocal upvalue, an upvalue found there is chained as isLocal=false.
func (c *Compiler) resolveUpvalue(fs *FuncState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].IsCaptured = true
		return c.addUpvalue(fs, byte(local), true)
	}
	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, byte(up), false)
	}
	return -1
}

// ---- declarations ----

func (c *Compiler) declaration() {
	switch {
	case c.matchTok(scanner.TokenClass):
		c.classDeclaration()
	case c.matchTok(scanner.TokenFn):
		c.fnDeclaration()
	case c.matchTok(scanner.TokenVar):
		c.varDeclaration()
	case c.matchTok(scanner.TokenImport):
		c.importDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.matchTok(scanner.TokenEqual) {
		c.expression()
	} else {
		c.emit(value.OpNil)
	}
	c.consume(scanner.TokenSemicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// importDeclaration implements spec §4.3's import statement: the named
// source is loaded and fully compiled-and-executed via importHook before
// the outer compile proceeds. There is no cycle guard (spec §9 Open
// Question 4) — a self-importing or mutually-importing program loops.
func (c *Compiler) importDeclaration() {
	c.consume(scanner.TokenIdentifier, "Expect module name after 'import'.")
	name := c.previous.Lexeme
	c.consume(scanner.TokenSemicolon, "Expect ';' after import.")
	if c.importHook == nil {
		c.error("import is not supported by this host.")
		return
	}
	if err := c.importHook(name); err != nil {
		c.error("import failed: " + err.Error())
	}
}

func parseReturnAnnotation(c *Compiler) value.ReturnKind {
	if !c.matchTok(scanner.TokenAt) {
		return value.ReturnNone
	}
	c.consume(scanner.TokenIdentifier, "Expect return type after '@'.")
	switch c.previous.Lexeme {
	case "void":
		return value.ReturnVoid
	case "int", "float":
		if c.previous.Lexeme == "int" {
			return value.ReturnInt
		}
		return value.ReturnFloat
	case "str":
		return value.ReturnStr
	case "bool":
		return value.ReturnBool
	default:
		c.error("Unknown return type annotation.")
		return value.ReturnNone
	}
}

func (c *Compiler) fnDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction, c.previous.Lexeme)
	c.defineVariable(global)
}

// function compiles one function body (or method) in a fresh FuncState,
// then emits OP_CLOSURE with its trailing (isLocal,index) upvalue byte
// pairs (spec §4.3).
func (c *Compiler) function(fnType FunctionType, name string) {
	c.pushFunc(fnType, name)
	c.beginScope()

	c.consume(scanner.TokenLeftParen, "Expect '(' after function name.")
	if !c.check(scanner.TokenRightParen) {
		for {
			c.cur.function.Arity++
			if c.cur.function.Arity > maxParams {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.matchTok(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightParen, "Expect ')' after parameters.")
	c.cur.function.ReturnKind = parseReturnAnnotation(c)
	c.consume(scanner.TokenLeftBrace, "Expect '{' before function body.")

	terminated := c.blockBody(fnType, c.cur.function.ReturnKind)

	upvalues := c.cur.upvalues
	fn := c.endFuncKeepingUpvalues()
	_ = terminated

	idx := c.makeConstant(value.Obj(fn))
	c.emitBytes(value.OpClosure, idx)
	for _, uv := range upvalues {
		if uv.IsLocal {
			c.emitOperand(1)
		} else {
			c.emitOperand(0)
		}
		c.emitOperand(uv.Index)
	}
}

// endFuncKeepingUpvalues is endFunc but lets the caller read the popped
// frame's upvalues first (function() needs them to emit the trailing
// OP_CLOSURE bytes against the *enclosing* chunk).
func (c *Compiler) endFuncKeepingUpvalues() *value.Function {
	c.emitReturn()
	fn := c.cur.function
	fn.UpvalueCount = len(c.cur.upvalues)
	c.cur = c.cur.enclosing
	return fn
}

// blockBody compiles declarations until `}` and reports whether the last
// statement was an explicit return. A function annotated with a return
// kind other than void that lacks that terminal return is a compile
// error. function() ignores the result: the implicit return is always
// emitted after the body, where it is unreachable if the body returned.
func (c *Compiler) blockBody(fnType FunctionType, kind value.ReturnKind) bool {
	explicitReturn := false
	for !c.check(scanner.TokenRightBrace) && !c.check(scanner.TokenEOF) {
		if c.check(scanner.TokenReturn) {
			explicitReturn = true
		} else {
			explicitReturn = false
		}
		c.declaration()
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after block.")
	if !explicitReturn && kind != value.ReturnNone && kind != value.ReturnVoid && fnType != TypeInitializer {
		c.error("Function must return a value on every path.")
	}
	return explicitReturn
}

func (c *Compiler) classDeclaration() {
	c.consume(scanner.TokenIdentifier, "Expect class name.")
	nameTok := c.previous
	nameConst := c.identifierConstant(nameTok)
	c.declareVariable(nameTok)

	c.emitBytes(value.OpClass, nameConst)
	c.defineVariable(nameConst)

	cs := &ClassState{enclosing: c.class}
	c.class = cs

	if c.matchTok(scanner.TokenLess) {
		c.consume(scanner.TokenIdentifier, "Expect superclass name.")
		if identifiersEqual(c.previous.Lexeme, nameTok.Lexeme) {
			c.error("A class can't inherit from itself.")
		}
		c.namedVariable(c.previous, false) // load superclass
		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)
		c.namedVariable(nameTok, false) // load subclass
		c.emit(value.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(nameTok, false) // load class for OP_METHOD targets
	c.consume(scanner.TokenLeftBrace, "Expect '{' before class body.")
	for !c.check(scanner.TokenRightBrace) && !c.check(scanner.TokenEOF) {
		c.method()
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after class body.")
	c.emit(value.OpPop) // pop the class reference pushed for OP_METHOD

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(scanner.TokenIdentifier, "Expect method name.")
	nameTok := c.previous
	nameConst := c.identifierConstant(nameTok)

	fnType := TypeMethod
	if nameTok.Lexeme == "init" {
		fnType = TypeInitializer
	}
	c.function(fnType, nameTok.Lexeme)
	c.emitBytes(value.OpMethod, nameConst)
}

// ---- statements ----

func (c *Compiler) statement() {
	switch {
	case c.matchTok(scanner.TokenOut):
		c.outStatement()
	case c.matchTok(scanner.TokenIf):
		c.ifStatement()
	case c.matchTok(scanner.TokenWhile):
		c.whileStatement()
	case c.matchTok(scanner.TokenUntil):
		c.untilStatement()
	case c.matchTok(scanner.TokenFor):
		c.forStatement()
	case c.matchTok(scanner.TokenReturn):
		c.returnStatement()
	case c.matchTok(scanner.TokenLeftBrace):
		c.beginScope()
		c.blockStatements()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) blockStatements() {
	for !c.check(scanner.TokenRightBrace) && !c.check(scanner.TokenEOF) {
		c.declaration()
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after block.")
}

func (c *Compiler) outStatement() {
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after value.")
	c.emit(value.OpOut)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after expression.")
	c.emit(value.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(value.OpJumpIfFalse)
	c.emit(value.OpPop)
	c.statement()

	elseJump := c.emitJump(value.OpJump)
	c.patchJump(thenJump)
	c.emit(value.OpPop)

	if c.matchTok(scanner.TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(value.OpJumpIfFalse)
	c.emit(value.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emit(value.OpPop)
}

// untilStatement negates the condition via OP_NOT (spec §4.3) and
// otherwise compiles exactly like while.
func (c *Compiler) untilStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'until'.")
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after condition.")
	c.emit(value.OpNot)

	exitJump := c.emitJump(value.OpJumpIfFalse)
	c.emit(value.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emit(value.OpPop)
}

// forStatement compiles a C-style for loop with the classic swap trick
// (spec §4.3): the body jumps over the increment, the body's end loops
// back to the increment, and the increment loops back to the condition.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(scanner.TokenLeftParen, "Expect '(' after 'for'.")

	switch {
	case c.matchTok(scanner.TokenSemicolon):
		// no initializer
	case c.matchTok(scanner.TokenVar):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.check(scanner.TokenSemicolon) {
		c.expression()
		c.consume(scanner.TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(value.OpJumpIfFalse)
		c.emit(value.OpPop)
	} else {
		c.advance() // consume ';'
	}

	if !c.check(scanner.TokenRightParen) {
		bodyJump := c.emitJump(value.OpJump)
		incrStart := len(c.currentChunk().Code)
		c.expression()
		c.emit(value.OpPop)
		c.consume(scanner.TokenRightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	} else {
		c.advance() // consume ')'
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emit(value.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.cur.fnType == TypeScript {
		c.error("Can't return from top-level code.")
	}
	if c.matchTok(scanner.TokenSemicolon) {
		if c.cur.fnType != TypeScript && c.cur.function.ReturnKind != value.ReturnNone &&
			c.cur.function.ReturnKind != value.ReturnVoid {
			c.error("Function must return a value.")
		}
		c.emitReturn()
		return
	}
	if c.cur.fnType == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	retTok := c.previous
	c.expression()
	c.consume(scanner.TokenSemicolon, "Expect ';' after return value.")
	c.checkReturnType(retTok, c.cur.function.ReturnKind)
	c.emit(value.OpReturn)
}

// checkReturnType implements spec §9's acknowledged-unsound proxy check:
// it only catches a return expression whose *last emitted opcode* is a
// literal of the wrong kind — a variable holding a mismatched value still
// slips through, by design (spec §9 Open Question 3).
func (c *Compiler) checkReturnType(tok scanner.Token, kind value.ReturnKind) {
	if kind == value.ReturnNone || kind == value.ReturnVoid {
		return
	}
	last := c.cur.lastOpcode
	isLiteralConst := last == value.OpConstant || last == value.OpConstantLong
	mismatch := false
	switch kind {
	case value.ReturnInt, value.ReturnFloat:
		if isLiteralConst && c.cur.lastConstant != nil && !c.cur.lastConstant.IsNumber() {
			mismatch = true
		}
		if last == value.OpTrue || last == value.OpFalse || last == value.OpNil {
			mismatch = true
		}
		if mismatch {
			c.errorAt(tok, "Function must return a number")
		}
	case value.ReturnStr:
		if isLiteralConst && c.cur.lastConstant != nil && !c.cur.lastConstant.IsObjType(value.ObjString) {
			mismatch = true
		}
		if last == value.OpTrue || last == value.OpFalse || last == value.OpNil {
			mismatch = true
		}
		if mismatch {
			c.errorAt(tok, "Function must return a string")
		}
	case value.ReturnBool:
		if isLiteralConst && c.cur.lastConstant != nil && !c.cur.lastConstant.IsBool() {
			mismatch = true
		}
		if last == value.OpNil {
			mismatch = true
		}
		if mismatch {
			c.errorAt(tok, "Function must return a boolean")
		}
	}
}

// ---- expressions ----

func (c *Compiler) expression() { c.parsePrecedence(PrecAssignment) }

// parsePrecedence is the Pratt driver (spec §4.3): run the prefix rule for
// previous, then consume infix operators whose precedence is >= p.
func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	prefix := rules[c.previous.Type].prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := p <= PrecAssignment
	prefix(c, canAssign)

	for p <= rules[c.current.Type].precedence {
		c.advance()
		infix := rules[c.previous.Type].infix
		infix(c, canAssign)
	}

	if canAssign && c.matchTok(scanner.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLit(canAssign bool) {
	raw := c.previous.Lexeme
	// Strip surrounding quotes; no escape processing (spec §4.1/§4.3).
	text := raw[1 : len(raw)-1]
	str := c.strings.Intern(text)
	c.emitConstant(value.Obj(str))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case scanner.TokenFalse:
		c.emit(value.OpFalse)
	case scanner.TokenTrue:
		c.emit(value.OpTrue)
	case scanner.TokenNil:
		c.emit(value.OpNil)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(scanner.TokenRightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case scanner.TokenMinus:
		c.emit(value.OpNegate)
	case scanner.TokenBang, scanner.TokenNot:
		c.emit(value.OpNot)
	case scanner.TokenTilde:
		c.emit(value.OpBitNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	rule := rules[opType]
	c.parsePrecedence(rule.precedence + 1)
	switch opType {
	case scanner.TokenPlus:
		c.emit(value.OpAdd)
	case scanner.TokenMinus:
		c.emit(value.OpSubtract)
	case scanner.TokenStar:
		c.emit(value.OpMultiply)
	case scanner.TokenSlash:
		c.emit(value.OpDivide)
	case scanner.TokenPercent:
		c.emit(value.OpModulo)
	case scanner.TokenBangEqual:
		c.emit(value.OpEqual)
		c.emit(value.OpNot)
	case scanner.TokenEqualEqual:
		c.emit(value.OpEqual)
	case scanner.TokenGreater:
		c.emit(value.OpGreater)
	case scanner.TokenGreaterEqual:
		c.emit(value.OpLess)
		c.emit(value.OpNot)
	case scanner.TokenLess:
		c.emit(value.OpLess)
	case scanner.TokenLessEqual:
		c.emit(value.OpGreater)
		c.emit(value.OpNot)
	case scanner.TokenAmp:
		c.emit(value.OpBitAnd)
	case scanner.TokenPipe:
		c.emit(value.OpBitOr)
	case scanner.TokenCaret:
		c.emit(value.OpBitXor)
	case scanner.TokenLessLess:
		c.emit(value.OpShiftLeft)
	case scanner.TokenGreaterGreater:
		c.emit(value.OpShiftRight)
	}
}

// and_ implements short-circuit `and` (spec §4.3): JUMP_IF_FALSE end; POP;
// rhs; end:
func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(value.OpJumpIfFalse)
	c.emit(value.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or_ implements short-circuit `or` (spec §4.3): JUMP_IF_FALSE else; JUMP
// end; else: POP; rhs; end:
func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(value.OpJumpIfFalse)
	endJump := c.emitJump(value.OpJump)
	c.patchJump(elseJump)
	c.emit(value.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) arrayLiteral(canAssign bool) {
	count := 0
	if !c.check(scanner.TokenRightBracket) {
		for {
			c.expression()
			count++
			if count > 0xFF {
				c.error("Too many elements in array literal.")
			}
			if !c.matchTok(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightBracket, "Expect ']' after array elements.")
	c.emitBytes(value.OpArray, byte(count))
}

func (c *Compiler) dictLiteral(canAssign bool) {
	count := 0
	if !c.check(scanner.TokenRightBrace) {
		for {
			if c.check(scanner.TokenString) {
				c.advance()
				c.stringLit(false)
			} else {
				c.consume(scanner.TokenIdentifier, "Expect dict key.")
				key := c.strings.Intern(c.previous.Lexeme)
				c.emitConstant(value.Obj(key))
			}
			c.consume(scanner.TokenColon, "Expect ':' after dict key.")
			c.expression()
			count++
			if count > 0xFF {
				c.error("Too many pairs in dict literal.")
			}
			if !c.matchTok(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightBrace, "Expect '}' after dict pairs.")
	c.emitBytes(value.OpDict, byte(count))
}

// subscript compiles `a[i]` / `a[i] = v` (spec §4.3).
func (c *Compiler) subscript(canAssign bool) {
	c.expression()
	c.consume(scanner.TokenRightBracket, "Expect ']' after index.")
	if canAssign && c.matchTok(scanner.TokenEqual) {
		c.expression()
		c.emit(value.OpObjectSet)
	} else {
		c.emit(value.OpObjectGet)
	}
}

// dot compiles `.x`, `.x = v`, `.m(args)` (spec §4.3): property get/set,
// or a fused OP_INVOKE for an immediate call.
func (c *Compiler) dot(canAssign bool) {
	c.consume(scanner.TokenIdentifier, "Expect property name after '.'.")
	nameConst := c.identifierConstant(c.previous)

	if canAssign && c.matchTok(scanner.TokenEqual) {
		c.expression()
		c.emitBytes(value.OpSetProperty, nameConst)
	} else if c.matchTok(scanner.TokenLeftParen) {
		argc := c.argumentList()
		c.emitBytes(value.OpInvoke, nameConst)
		c.emitOperand(byte(argc))
	} else {
		c.emitBytes(value.OpGetProperty, nameConst)
	}
}

func (c *Compiler) argumentList() int {
	argc := 0
	if !c.check(scanner.TokenRightParen) {
		for {
			c.expression()
			argc++
			if argc > maxParams {
				c.error("Can't have more than 255 arguments.")
			}
			if !c.matchTok(scanner.TokenComma) {
				break
			}
		}
	}
	c.consume(scanner.TokenRightParen, "Expect ')' after arguments.")
	return argc
}

func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitBytes(value.OpCall, byte(argc))
}

// namedVariable resolves name per spec §4.3's three-step rule (local,
// upvalue, global) and emits the matching get/set opcode. canAssign gates
// whether a trailing `=` is treated as assignment (so `a.b = c` doesn't
// let `b` itself absorb the `=`).
func (c *Compiler) namedVariable(tok scanner.Token, canAssign bool) {
	var getOp, setOp value.OpCode
	var arg int

	if slot := c.resolveLocal(c.cur, tok.Lexeme); slot != -1 {
		getOp, setOp, arg = value.OpGetLocal, value.OpSetLocal, slot
	} else if up := c.resolveUpvalue(c.cur, tok.Lexeme); up != -1 {
		getOp, setOp, arg = value.OpGetUpvalue, value.OpSetUpvalue, up
	} else {
		arg = int(c.identifierConstant(tok))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && c.matchTok(scanner.TokenEqual) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(scanner.TokenDot, "Expect '.' after 'super'.")
	c.consume(scanner.TokenIdentifier, "Expect superclass method name.")
	nameConst := c.identifierConstant(c.previous)

	c.namedVariable(scanner.Token{Type: scanner.TokenIdentifier, Lexeme: "this"}, false)
	if c.matchTok(scanner.TokenLeftParen) {
		argc := c.argumentList()
		c.namedVariable(scanner.Token{Type: scanner.TokenIdentifier, Lexeme: "super"}, false)
		c.emitBytes(value.OpSuperInvoke, nameConst)
		c.emitOperand(byte(argc))
	} else {
		c.namedVariable(scanner.Token{Type: scanner.TokenIdentifier, Lexeme: "super"}, false)
		c.emitBytes(value.OpGetSuper, nameConst)
	}
}
