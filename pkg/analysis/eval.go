package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/balcao-digital/gestor-engine/pkg/snapshot"
)

// maxSteps bounds total row visits per evaluation. Programs touch each
// row a handful of times; anything near the bound is runaway.
const maxSteps = 100000

// Result kinds.
const (
	ResultNumber = iota
	ResultMapping
	ResultMissing
)

// GroupEntry is one label→value pair of a mapping result, in the order
// the formatter should render them.
type GroupEntry struct {
	Label string
	Value float64
}

// Result is the final value a program produced.
type Result struct {
	Kind   int
	Number float64
	Groups []GroupEntry
}

// value is the intermediate chain state.
type value struct {
	rows   []*snapshot.Row // non-nil while the chain is still row-shaped
	num    float64
	groups []GroupEntry
	kind   int // valueRows, valueNumber, valueGroups
}

const (
	valueRows = iota
	valueNumber
	valueGroups
)

type evaluator struct {
	table *snapshot.Table
	steps int
	ctx   context.Context
}

// Evaluate runs a parsed program against the snapshot table. The
// evaluation context is request-local and single-use; the table is never
// mutated. Honors ctx cancellation between verbs and during row scans.
func Evaluate(ctx context.Context, table *snapshot.Table, prog *Program) (*Result, error) {
	ev := &evaluator{table: table, ctx: ctx}

	rows := make([]*snapshot.Row, len(table.Rows))
	for i := range table.Rows {
		rows[i] = &table.Rows[i]
	}
	cur := value{kind: valueRows, rows: rows}

	for i := range prog.Chain {
		if err := ctx.Err(); err != nil {
			return nil, &ExecutionError{Msg: "evaluation canceled", Cause: err}
		}
		next, err := ev.apply(cur, &prog.Chain[i])
		if err != nil {
			return nil, err
		}
		cur = next
	}

	switch cur.kind {
	case valueNumber:
		return &Result{Kind: ResultNumber, Number: cur.num}, nil
	case valueGroups:
		return &Result{Kind: ResultMapping, Groups: cur.groups}, nil
	default:
		// The chain selected rows but never aggregated them.
		return &Result{Kind: ResultMissing}, nil
	}
}

func (ev *evaluator) apply(cur value, call *Call) (value, error) {
	switch call.Name {
	case "filtrar":
		return ev.filter(cur, call)
	case "contar", "somar", "media", "maximo", "minimo":
		if cur.kind != valueRows {
			return value{}, execErrorf("%s requires a row set", call.Name)
		}
		n, err := ev.aggregate(cur.rows, call)
		if err != nil {
			return value{}, err
		}
		return value{kind: valueNumber, num: n}, nil
	case "agrupar":
		return ev.group(cur, call)
	case "primeiros":
		return ev.first(cur, call)
	default:
		return value{}, execErrorf("unknown verb %q", call.Name)
	}
}

func (ev *evaluator) filter(cur value, call *Call) (value, error) {
	if cur.kind != valueRows {
		return value{}, execErrorf("filtrar requires a row set")
	}
	if len(call.Args) == 0 {
		return value{}, execErrorf("filtrar requires at least one condition")
	}
	conds := make([]Condition, 0, len(call.Args))
	for i := range call.Args {
		if call.Args[i].Kind != argCondition {
			return value{}, execErrorf("filtrar arguments must be comparisons")
		}
		c := call.Args[i].Cond
		if !ev.table.HasColumn(c.Column) {
			return value{}, execErrorf("unknown column %q", c.Column)
		}
		conds = append(conds, c)
	}

	var kept []*snapshot.Row
	for _, row := range cur.rows {
		if err := ev.step(); err != nil {
			return value{}, err
		}
		match := true
		for i := range conds {
			if !matchCondition(row, &conds[i]) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, row)
		}
	}
	return value{kind: valueRows, rows: kept}, nil
}

func matchCondition(row *snapshot.Row, c *Condition) bool {
	if c.IsNumber {
		v, ok := row.Number(c.Column)
		if !ok {
			return false
		}
		return compareNumbers(v, c.Op, c.Number)
	}
	v, ok := row.Text(c.Column)
	if !ok {
		// Null never matches except an explicit != test.
		return c.Op == "!="
	}
	return compareText(v, c.Op, c.Text)
}

func compareNumbers(a float64, op string, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}

// Equality is case-insensitive so status codes match regardless of how
// the model writes them; ordering is plain string order, which is
// correct for the ISO date columns.
func compareText(a, op, b string) bool {
	switch op {
	case "==":
		return strings.EqualFold(a, b)
	case "!=":
		return !strings.EqualFold(a, b)
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}

func (ev *evaluator) aggregate(rows []*snapshot.Row, call *Call) (float64, error) {
	if call.Name == "contar" {
		if len(call.Args) != 0 {
			return 0, execErrorf("contar takes no arguments")
		}
		for range rows {
			if err := ev.step(); err != nil {
				return 0, err
			}
		}
		return float64(len(rows)), nil
	}

	if len(call.Args) != 1 || call.Args[0].Kind != argColumn {
		return 0, execErrorf("%s requires a column argument", call.Name)
	}
	col := call.Args[0].Column
	if !ev.table.HasColumn(col) {
		return 0, execErrorf("unknown column %q", col)
	}
	if !snapshot.IsNumericColumn(col) {
		return 0, execErrorf("%s requires a numeric column, %q is not", call.Name, col)
	}

	var sum float64
	var count int
	var best float64
	for _, row := range rows {
		if err := ev.step(); err != nil {
			return 0, err
		}
		// Null numeric cells coerce to 0, mirroring the snapshot build.
		v, _ := row.Number(col)
		sum += v
		count++
		switch call.Name {
		case "maximo":
			if count == 1 || v > best {
				best = v
			}
		case "minimo":
			if count == 1 || v < best {
				best = v
			}
		}
	}

	switch call.Name {
	case "somar":
		return sum, nil
	case "media":
		if count == 0 {
			return 0, execErrorf("media over an empty row set")
		}
		return sum / float64(count), nil
	case "maximo", "minimo":
		if count == 0 {
			return 0, execErrorf("%s over an empty row set", call.Name)
		}
		return best, nil
	}
	return 0, execErrorf("unknown aggregate %q", call.Name)
}

func (ev *evaluator) group(cur value, call *Call) (value, error) {
	if cur.kind != valueRows {
		return value{}, execErrorf("agrupar requires a row set")
	}
	if len(call.Args) != 2 || call.Args[0].Kind != argColumn || call.Args[1].Kind != argCall {
		return value{}, execErrorf("agrupar requires a column and an aggregate call")
	}
	col := call.Args[0].Column
	if !ev.table.HasColumn(col) {
		return value{}, execErrorf("unknown column %q", col)
	}
	inner := call.Args[1].Call
	switch inner.Name {
	case "contar", "somar", "media", "maximo", "minimo":
		// ok
	default:
		return value{}, execErrorf("agrupar aggregate must be contar/somar/media/maximo/minimo, got %q", inner.Name)
	}

	// Groups keep first-seen order so output is stable.
	var order []string
	buckets := make(map[string][]*snapshot.Row)
	for _, row := range cur.rows {
		if err := ev.step(); err != nil {
			return value{}, err
		}
		label, ok := row.Text(col)
		if !ok {
			continue
		}
		if _, seen := buckets[label]; !seen {
			order = append(order, label)
		}
		buckets[label] = append(buckets[label], row)
	}

	groups := make([]GroupEntry, 0, len(order))
	for _, label := range order {
		n, err := ev.aggregate(buckets[label], inner)
		if err != nil {
			return value{}, err
		}
		groups = append(groups, GroupEntry{Label: label, Value: n})
	}
	return value{kind: valueGroups, groups: groups}, nil
}

// first keeps the leading n entries. On a mapping it orders entries by
// value descending first, which is what top-N questions want; on a row
// set it keeps snapshot order.
func (ev *evaluator) first(cur value, call *Call) (value, error) {
	if len(call.Args) != 1 || call.Args[0].Kind != argNumber {
		return value{}, execErrorf("primeiros requires a count")
	}
	n := int(call.Args[0].Number)
	if n <= 0 {
		return value{}, execErrorf("primeiros count must be positive")
	}

	switch cur.kind {
	case valueGroups:
		sorted := make([]GroupEntry, len(cur.groups))
		copy(sorted, cur.groups)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Value > sorted[j].Value
		})
		if n > len(sorted) {
			n = len(sorted)
		}
		return value{kind: valueGroups, groups: sorted[:n]}, nil
	case valueRows:
		if n > len(cur.rows) {
			n = len(cur.rows)
		}
		return value{kind: valueRows, rows: cur.rows[:n]}, nil
	default:
		return value{}, execErrorf("primeiros requires rows or groups")
	}
}

func (ev *evaluator) step() error {
	ev.steps++
	if ev.steps > maxSteps {
		return execErrorf("step limit exceeded")
	}
	if ev.steps%1024 == 0 {
		if err := ev.ctx.Err(); err != nil {
			return &ExecutionError{Msg: "evaluation canceled", Cause: err}
		}
	}
	return nil
}
