// Package codegen implements the code generator of spec §4.12: given an
// assembled analysis stack, it emits record declarations, function
// definitions, Ether-movement helpers, the non-deterministic registry
// dump, the address-space initialiser, and the top-level driver. The
// emitter itself (pkg/emit) is a mechanical node-to-text printer; this
// package is the "glue" that decides what text to print, leaning on the
// scope resolver and type analyser for every name and type it writes.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/contract-ace/smartace-sub002/pkg/analysis/typeinfo"
	"github.com/contract-ace/smartace-sub002/pkg/analysisstack"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/bundletree"
	"github.com/contract-ace/smartace-sub002/pkg/diag"
	"github.com/contract-ace/smartace-sub002/pkg/emit"
	"github.com/contract-ace/smartace-sub002/pkg/logging"
	"github.com/contract-ace/smartace-sub002/pkg/runtimesyms"
	"github.com/contract-ace/smartace-sub002/pkg/scope"
)

var log = logging.Component("codegen")

// Options toggles the command-line surface spec §6 names. Generate reads
// ForwardDeclareOnly and LockstepTime; MapK and AddSums are carried from
// the command line but not read, so they do not change the emitted model
// (no mapping records or sum fields are generated).
type Options struct {
	ForwardDeclareOnly bool
	MapK               int
	LockstepTime       bool
	AddSums            bool
}

// Generator holds the per-run mutable state code generation needs: the
// output printer, the current variable scope, and the analysis stack
// it's reading from.
type Generator struct {
	stack *analysisstack.Stack
	opts  Options
	p     *emit.Printer
	scope *scope.Resolver
}

// Generate writes the complete model for stack to p, honoring opts.
func Generate(p *emit.Printer, stack *analysisstack.Stack, opts Options) error {
	g := &Generator{stack: stack, opts: opts, p: p, scope: scope.New()}
	return g.run()
}

func (g *Generator) run() error {
	contracts := g.instantiatedContracts()

	g.forwardDeclarations(contracts)
	if g.opts.ForwardDeclareOnly {
		return g.functionForwardDeclarations()
	}

	for _, c := range contracts {
		g.recordBody(c)
	}
	if err := g.functionForwardDeclarations(); err != nil {
		return err
	}
	for _, fn := range g.stack.CallGraph.ExecutedCode() {
		if err := g.Function(fn); err != nil {
			return err
		}
	}

	g.globalInstanceDecls()
	g.etherHelpers()

	// The driver issues its own non-deterministic functions, so it is
	// rendered first into its own buffer and printed after the dump.
	var driver bytes.Buffer
	restore := g.p.Swap(&driver)
	g.driverMain()
	restore()

	g.nondetDump()
	g.addressSpaceInitializer()
	g.p.Raw(driver.String())

	log.Debug().Int("contracts", len(contracts)).Msg("model generated")
	return nil
}

// instantiatedContracts returns every distinct contract definition that
// actually appears in the tight bundle — the bundled roots plus every
// contract type reached by allocation, in tight-bundle (depth-first,
// address) order, deduplicated to its first occurrence. Records are
// declared for all of these, not just the bundled roots: a field-
// constructed instance like a Vault held by a Wallet still needs a
// storage record and a slot in the Ether-transfer dispatch table.
func (g *Generator) instantiatedContracts() []*ast.ContractDefinition {
	seen := make(map[*ast.ContractDefinition]bool)
	var out []*ast.ContractDefinition
	for _, n := range g.allTreeNodes() {
		c := n.Flat.Source
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// forwardDeclarations prints one opaque-struct forward declaration per
// contract it is given (instantiatedContracts: every contract in the
// tight bundle, in tight-bundle order, first occurrence only).
func (g *Generator) forwardDeclarations(contracts []*ast.ContractDefinition) {
	for _, c := range contracts {
		g.p.Line("typedef struct struct_%s struct_%s;", c.Name, c.Name)
	}
}

// recordBody prints one contract's storage record: the two fixed
// fields every lowered record carries, plus one field per merged state
// variable.
func (g *Generator) recordBody(c *ast.ContractDefinition) {
	fc := g.stack.Flats[c]
	g.p.Line("struct struct_%s {", c.Name)
	g.p.Indented(func() {
		g.p.Line("address_t %s;", runtimesyms.ContractRecordFields[0])
		g.p.Line("value_t %s;", runtimesyms.ContractRecordFields[1])
		for _, sv := range fc.StateVariables {
			g.p.Line("%s %s;", typeName(sv.Type), scope.ResolveStructField(sv.Name))
		}
	})
	g.p.Line("};")
}

func (g *Generator) functionForwardDeclarations() error {
	for _, fn := range g.stack.CallGraph.ExecutedCode() {
		if fn.IsMultiReturn() {
			return diag.ErrUnsupportedFeature{Construct: "multi-return function", Detail: fn.Name}
		}
		g.p.Line("%s;", g.signature(fn))
	}
	return nil
}

func (g *Generator) signature(fn *ast.FunctionDefinition) string {
	ret := "void"
	if len(fn.ReturnParameters) == 1 {
		ret = typeName(fn.ReturnParameters[0].Type)
	}
	params := []string{fmt.Sprintf("struct_%s *self", fn.Contract.Name), "CallState *state"}
	for _, p := range fn.Parameters {
		params = append(params, fmt.Sprintf("%s %s", typeName(p.Type), p.Name))
	}
	return fmt.Sprintf("%s %s(%s)", ret, funcSymbol(fn), strings.Join(params, ", "))
}

func funcSymbol(fn *ast.FunctionDefinition) string {
	return fn.Contract.Name + "_" + fn.Name
}

// Function prints one function's full definition.
func (g *Generator) Function(fn *ast.FunctionDefinition) error {
	if fn.IsMultiReturn() {
		return diag.ErrUnsupportedFeature{Construct: "multi-return function", Detail: fn.Name}
	}

	g.scope.Enter()
	defer g.scope.Exit()
	for _, p := range fn.Parameters {
		g.scope.Record(p.Name)
	}

	g.p.Line("%s {", g.signature(fn))
	var bodyErr error
	g.p.Indented(func() {
		if fn.Body == nil {
			return
		}
		for _, s := range fn.Body.Statements {
			if bodyErr != nil {
				return
			}
			bodyErr = g.Stmt(s)
		}
	})
	g.p.Line("}")
	return bodyErr
}

// Stmt lowers one statement, writing it through the printer.
func (g *Generator) Stmt(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.Block:
		g.scope.Enter()
		defer g.scope.Exit()
		for _, inner := range st.Statements {
			if err := g.Stmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *ast.IfStatement:
		cond, err := g.Expr(st.Condition)
		if err != nil {
			return err
		}
		g.p.Line("if (%s) {", cond)
		var err2 error
		g.p.Indented(func() { err2 = g.Stmt(st.TrueBody) })
		if err2 != nil {
			return err2
		}
		if st.FalseBody != nil {
			g.p.Line("} else {")
			g.p.Indented(func() { err2 = g.Stmt(st.FalseBody) })
			if err2 != nil {
				return err2
			}
		}
		g.p.Line("}")
		return nil

	case *ast.WhileStatement:
		cond, err := g.Expr(st.Condition)
		if err != nil {
			return err
		}
		g.p.Line("while (%s) {", cond)
		var err2 error
		g.p.Indented(func() { err2 = g.Stmt(st.Body) })
		g.p.Line("}")
		return err2

	case *ast.ForStatement:
		g.scope.Enter()
		defer g.scope.Exit()
		g.p.Line("for (;;) {")
		var err error
		g.p.Indented(func() {
			if st.Init != nil {
				if e := g.Stmt(st.Init); e != nil {
					err = e
					return
				}
			}
			if st.Condition != nil {
				cond, e := g.Expr(st.Condition)
				if e != nil {
					err = e
					return
				}
				g.p.Line("if (!(%s)) break;", cond)
			}
			if e := g.Stmt(st.Body); e != nil {
				err = e
				return
			}
			if st.Post != nil {
				err = g.Stmt(st.Post)
			}
		})
		g.p.Line("}")
		return err

	case *ast.ReturnStatement:
		if st.Value == nil {
			g.p.Stmt("return")
			return nil
		}
		val, err := g.Expr(st.Value)
		if err != nil {
			return err
		}
		g.p.Stmt("return %s", val)
		return nil

	case *ast.BreakStatement:
		g.p.Stmt("break")
		return nil

	case *ast.ContinueStatement:
		g.p.Stmt("continue")
		return nil

	case *ast.EmitStatement:
		return diag.ErrUnsupportedFeature{Construct: "emit", Detail: st.EventName}

	case *ast.VariableDeclarationStatement:
		for _, d := range st.Declarations {
			g.scope.Record(d.Name)
			if d.Value == nil {
				g.p.Stmt("%s %s", typeName(d.Type), d.Name)
				continue
			}
			val, err := g.Expr(d.Value)
			if err != nil {
				return err
			}
			g.p.Stmt("%s %s = %s", typeName(d.Type), d.Name, val)
		}
		return nil

	case *ast.ExpressionStatement:
		val, err := g.Expr(st.Expression)
		if err != nil {
			return err
		}
		g.p.Stmt("%s", val)
		return nil

	case *ast.InlineAssemblyStatement:
		return diag.ErrUnsupportedFeature{Construct: "inline assembly"}

	case *ast.ThrowStatement:
		return diag.ErrUnsupportedFeature{Construct: "throw"}

	default:
		return diag.ErrInternal{Pass: "codegen", Reason: "unhandled statement kind"}
	}
}

// Expr lowers one expression to its textual form.
func (g *Generator) Expr(e ast.Expression) (string, error) {
	switch ex := e.(type) {
	case *ast.Identifier:
		return g.scope.Resolve(ex.Name)

	case *ast.Literal:
		if ex.Kind == ast.LiteralString {
			code, err := g.stack.Strings.Code(ex)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d", code), nil
		}
		return ex.Value, nil

	case *ast.BinaryOperation:
		l, err := g.Expr(ex.Left)
		if err != nil {
			return "", err
		}
		r, err := g.Expr(ex.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, ex.Operator, r), nil

	case *ast.UnaryOperation:
		operand, err := g.Expr(ex.Operand)
		if err != nil {
			return "", err
		}
		if ex.Prefix {
			return fmt.Sprintf("(%s%s)", ex.Operator, operand), nil
		}
		return fmt.Sprintf("(%s%s)", operand, ex.Operator), nil

	case *ast.Conditional:
		cond, err := g.Expr(ex.Condition)
		if err != nil {
			return "", err
		}
		t, err := g.Expr(ex.True)
		if err != nil {
			return "", err
		}
		f, err := g.Expr(ex.False)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", cond, t, f), nil

	case *ast.CastExpression:
		arg, err := g.Expr(ex.Argument)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("((%s)%s)", typeName(ex.Target), arg), nil

	case *ast.FunctionCall:
		callee, err := g.calleeText(ex.Callee)
		if err != nil {
			return "", err
		}
		args := make([]string, len(ex.Arguments))
		for i, a := range ex.Arguments {
			s, err := g.Expr(a)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil

	case *ast.MemberAccess:
		base, err := g.Expr(ex.Base)
		if err != nil {
			return "", err
		}
		return base + "->" + ex.Member, nil

	case *ast.IndexAccess:
		base, err := g.Expr(ex.Base)
		if err != nil {
			return "", err
		}
		idx, err := g.Expr(ex.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, idx), nil

	case *ast.TupleExpression:
		parts := make([]string, len(ex.Components))
		for i, c := range ex.Components {
			s, err := g.Expr(c)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, ", ") + ")", nil

	case *ast.NewExpression:
		args := make([]string, len(ex.Arguments))
		for i, a := range ex.Arguments {
			s, err := g.Expr(a)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return fmt.Sprintf("sc_new_%s(%s)", ex.Definition.Name, strings.Join(args, ", ")), nil

	default:
		return "", diag.ErrInternal{Pass: "codegen", Reason: "unhandled expression kind"}
	}
}

// calleeText renders a call's callee: a bare identifier names a
// function directly (never a storage field, so it bypasses the scope
// resolver's self->d_ rewriting), a member access renders its base as a
// normal expression and appends the member.
func (g *Generator) calleeText(e ast.Expression) (string, error) {
	switch c := e.(type) {
	case *ast.Identifier:
		return c.Name, nil
	case *ast.MemberAccess:
		base, err := g.Expr(c.Base)
		if err != nil {
			return "", err
		}
		return base + "->" + c.Member, nil
	default:
		return g.Expr(e)
	}
}

// allTreeNodes flattens the tight bundle's forest into depth-first
// visitation order, the same order bundletree assigned addresses in
// (spec §4.9's invariant (ii)).
func (g *Generator) allTreeNodes() []*bundletree.BundleContract {
	return g.stack.Tree.AllNodes()
}

// instanceVar is the global pointer variable an instance is reachable
// through from outside the constructor that allocated it — addressed by
// its dense tight-bundle address, since that's the one name every pass
// downstream of bundletree already treats as the instance's identity.
func instanceVar(n *bundletree.BundleContract) string {
	return fmt.Sprintf("g_inst_%d", n.Address)
}

// globalInstanceDecls declares one global pointer per tight-bundle
// instance, so the Ether helpers below (and the driver main that
// populates them) can all reach every statically known instance without
// threading it through as a parameter.
func (g *Generator) globalInstanceDecls() {
	for _, n := range g.allTreeNodes() {
		g.p.Line("struct_%s *%s;", n.Flat.Source.Name, instanceVar(n))
	}
}

// etherHelpers emits transfer/send/pay. transfer's recipient-dispatch
// path is generated by iterating the tight bundle (spec §4.12): one
// comparison per statically known instance, in tight-bundle order,
// against the recipient's runtime address.
func (g *Generator) etherHelpers() {
	g.p.Line("void transfer(address_t to, value_t amount) {")
	g.p.Indented(func() {
		for _, n := range g.allTreeNodes() {
			v := instanceVar(n)
			g.p.Line("if (%s->%s == to) { %s->%s += amount; return; }", v, runtimesyms.ContractRecordFields[0], v, runtimesyms.ContractRecordFields[1])
		}
	})
	g.p.Line("}")
	g.p.Line("bool send(address_t to, value_t amount) { transfer(to, amount); return true; }")
	g.p.Line("void pay(address_t to, value_t amount) { transfer(to, amount); }")
}

func (g *Generator) nondetDump() {
	for _, entry := range g.stack.Nondet.Dump() {
		g.p.Line("%s", entry.Body)
	}
}

func (g *Generator) addressSpaceInitializer() {
	space := g.stack.AddressSpace
	for _, a := range space.Assignments {
		if !a.NonZero {
			g.p.Stmt("address_t literal_addr_%s = 0", sanitizeLiteral(a.Literal))
			continue
		}
		g.p.Stmt("address_t literal_addr_%s = %s", sanitizeLiteral(a.Literal), g.stack.Nondet.Range(space.MinAddr, space.MaxAddr, a.Literal))
	}
	for _, c := range space.Constraints {
		g.p.Stmt("%s(literal_addr_%s != literal_addr_%s, \"distinct literal addresses\")", runtimesyms.Require, sanitizeLiteral(c.A), sanitizeLiteral(c.B))
	}
}

// callTableEntry is one (bundled instance, public method) pair the
// driver can select in a given step.
type callTableEntry struct {
	Node *bundletree.BundleContract
	Fn   *ast.FunctionDefinition
}

// callTable builds the driver's fixed dispatch table: every bundled
// root's public interface, in bundle order (stack.Tree.Roots, which
// bundletree.Build keeps 1:1 with stack.Bundle.Contracts) then per-root
// method order (each root's Flat.Methods) — so the non-deterministic
// pick index below always maps to the same call across runs.
func (g *Generator) callTable() []callTableEntry {
	var table []callTableEntry
	for _, root := range g.stack.Tree.Roots {
		for _, fn := range root.Flat.Methods {
			table = append(table, callTableEntry{Node: root, Fn: fn})
		}
	}
	return table
}

// advanceGlobalState draws the step the chain's global state takes
// before the next call is dispatched (spec §4.12 "advance the global
// state"). Under --lockstep-time a single shared step advances
// block.number and block.timestamp together, grounding the original
// harness's M_STEPVAR; otherwise each field advances independently.
func (g *Generator) advanceGlobalState() {
	if g.opts.LockstepTime {
		g.p.Stmt("value_t step = %s", g.stack.Nondet.Range(0, 1<<20, "lockstep_step"))
		g.p.Stmt("state->blocknum += step")
		g.p.Stmt("state->timestamp += step")
		return
	}
	g.p.Stmt("state->blocknum = %s(state->blocknum)", g.stack.Nondet.Increase("blocknum", true))
	g.p.Stmt("state->timestamp = %s(state->timestamp)", g.stack.Nondet.Increase("timestamp", true))
}

// emitCallDispatch draws the non-deterministic selector (spec §4.12
// "non-deterministically pick one bundled function per step") and
// dispatches to the chosen entry, following the same if/else-if-chain
// idiom etherHelpers already uses for its own dispatch over the tight
// bundle. An empty table (nothing public to call) drives nothing.
func (g *Generator) emitCallDispatch(table []callTableEntry) {
	if len(table) == 0 {
		return
	}
	g.p.Stmt("int pick = %s", g.stack.Nondet.Range(0, len(table)-1, "function_select"))
	for i, entry := range table {
		keyword := "if"
		if i > 0 {
			keyword = "} else if"
		}
		g.p.Line("%s (pick == %d) {", keyword, i)
		g.p.Indented(func() { g.emitDriverCall(entry) })
	}
	g.p.Line("}")
}

// emitDriverCall draws one non-deterministic argument per parameter
// (spec §4.12 "non-deterministically pick inputs") and invokes the
// selected function — its own sol_require/sol_assert calls run as an
// ordinary part of the generated body, giving the assertion-checking
// context the driver loop needs.
func (g *Generator) emitDriverCall(entry callTableEntry) {
	args := make([]string, 0, len(entry.Fn.Parameters))
	for _, p := range entry.Fn.Parameters {
		valFn := g.stack.Nondet.Val(p.Type, entry.Fn.Name+"_"+p.Name)
		g.p.Stmt("%s %s = %s()", typeName(p.Type), p.Name, valFn)
		args = append(args, p.Name)
	}
	call := append([]string{instanceVar(entry.Node), "state"}, args...)
	g.p.Stmt("%s(%s)", funcSymbol(entry.Fn), strings.Join(call, ", "))
}

// driverMain emits the top-level harness (spec §1 "a top-level harness
// that non-deterministically drives the bundle", §4.12 and §2 step 11):
// declares call-state, allocates every tight-bundle instance at its
// address into the globals globalInstanceDecls declared, then loops
// forever advancing global state and dispatching one non-deterministically
// selected bundled call per iteration.
func (g *Generator) driverMain() {
	table := g.callTable()
	g.p.Line("int main(void) {")
	g.p.Indented(func() {
		g.p.Line("CallState *state = rt_new_call_state();")
		for _, n := range g.allTreeNodes() {
			v := instanceVar(n)
			g.p.Line("%s = rt_new_%s(state, %d);", v, n.Flat.Source.Name, n.Address)
		}
		g.p.Line("for (;;) {")
		g.p.Indented(func() {
			g.advanceGlobalState()
			g.emitCallDispatch(table)
		})
		g.p.Line("}")
	})
	g.p.Line("}")
}

func typeName(t ast.TypeName) string {
	u := typeinfo.Unwrap(t)
	if et, ok := u.(ast.ElementaryType); ok {
		return scalarTypeName(et)
	}
	cls := typeinfo.Classify(t, "")
	if cls.Tag == typeinfo.Simple {
		return "uint8_t"
	}
	return cls.RecordName
}

func scalarTypeName(et ast.ElementaryType) string {
	if et.IsAddress {
		return "address_t"
	}
	if et.IsBool {
		return "bool"
	}
	sign := "u"
	if et.Signed {
		sign = ""
	}
	if et.IsFixedPoint {
		return fmt.Sprintf("%sfixed%d_t", sign, et.Bits)
	}
	return fmt.Sprintf("%sint%d_t", sign, et.Bits)
}

func sanitizeLiteral(lit string) string {
	return strings.Map(func(r rune) rune {
		if r == 'x' || r == 'X' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
			return r
		}
		return '_'
	}, lit)
}
