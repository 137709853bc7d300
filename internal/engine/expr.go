package engine

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/smilemakc/bars/internal/domain"
)

// ExprEvaluator compiles each Edge's Direct NodeExpression into a
// cached expr-lang program and evaluates it against the current node
// states, the way the teacher's ConditionEvaluator compiles and caches
// condition strings rather than re-parsing on every evaluation.
//
// The expression language here is trivial by construction — a
// disjunction of conjunctions of node-state variable references — but
// routing it through expr-lang keeps the evaluation strategy
// consistent with the rest of the corpus instead of hand-rolling a
// second boolean evaluator.
type exprKey struct {
	profile int
	edge    int
}

type ExprEvaluator struct {
	mu      sync.Mutex
	program map[exprKey]*vm.Program
}

// NewExprEvaluator creates an evaluator with an empty compile cache.
func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{program: make(map[exprKey]*vm.Program)}
}

// nodeVar is the env variable name used for a given node index.
func nodeVar(n domain.NodeRef) string {
	return "n" + strconv.Itoa(n.Int())
}

// compile turns a NodeExpression into an expr-lang source string. An
// empty disjunction compiles to the literal "false" (§3: empty
// disjunction ⇒ Off).
func compile(e domain.NodeExpression) string {
	if len(e.Disjunction) == 0 {
		return "false"
	}

	clauses := make([]string, 0, len(e.Disjunction))
	for _, conj := range e.Disjunction {
		terms := make([]string, 0, len(conj.Positive)+len(conj.Negative))
		for _, n := range conj.Positive {
			terms = append(terms, nodeVar(n))
		}
		for _, n := range conj.Negative {
			terms = append(terms, "!"+nodeVar(n))
		}
		if len(terms) == 0 {
			// An empty conjunction is vacuously true.
			clauses = append(clauses, "true")
			continue
		}
		clauses = append(clauses, "("+strings.Join(terms, " && ")+")")
	}
	return strings.Join(clauses, " || ")
}

// Evaluate compiles (once, cached by profile and edge index) and runs
// the Direct condition's expression against the supplied node-state
// lookup, returning the edge's EdgeState.
func (ev *ExprEvaluator) Evaluate(profile int, edge domain.EdgeRef, e domain.NodeExpression, nodeState func(domain.NodeRef) domain.NodeState) (domain.EdgeState, error) {
	key := exprKey{profile: profile, edge: edge.Int()}

	env := make(map[string]any, len(e.Disjunction)*2)
	for _, conj := range e.Disjunction {
		for _, n := range conj.Positive {
			env[nodeVar(n)] = bool(nodeState(n))
		}
		for _, n := range conj.Negative {
			env[nodeVar(n)] = bool(nodeState(n))
		}
	}

	ev.mu.Lock()
	program, ok := ev.program[key]
	if !ok {
		src := compile(e)
		p, err := expr.Compile(src, expr.Env(env), expr.AsBool())
		if err != nil {
			ev.mu.Unlock()
			return domain.EdgeOff, fmt.Errorf("compile edge %d expression %q: %w", edge.Int(), src, err)
		}
		program = p
		ev.program[key] = program
	}
	ev.mu.Unlock()

	out, err := expr.Run(program, env)
	if err != nil {
		return domain.EdgeOff, fmt.Errorf("run edge %d expression: %w", edge.Int(), err)
	}
	if out.(bool) {
		return domain.EdgeOn, nil
	}
	return domain.EdgeOff, nil
}
