package querybuilder

import "strings"

// Condition is one predicate of a WHERE clause.
type Condition interface {
	writeTo(w *sqlWriter)
}

type compareCondition struct {
	column string
	op     string
	value  any
}

// Eq renders column = $n.
func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

func Ne(column string, value any) Condition {
	return compareCondition{column: column, op: "<>", value: value}
}

func Gt(column string, value any) Condition {
	return compareCondition{column: column, op: ">", value: value}
}

func Lt(column string, value any) Condition {
	return compareCondition{column: column, op: "<", value: value}
}

func (c compareCondition) writeTo(w *sqlWriter) {
	w.WriteString(c.column)
	w.WriteString(" " + c.op + " ")
	w.bind(c.value)
}

type inCondition struct {
	column string
	values []any
}

// InValues renders column IN ($n, ...). An empty list matches no rows.
func InValues[T any](column string, values []T) Condition {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return inCondition{column: column, values: out}
}

func (c inCondition) writeTo(w *sqlWriter) {
	if len(c.values) == 0 {
		w.WriteString("1=0")
		return
	}
	w.WriteString(c.column + " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteByte(')')
}

type literalCondition struct {
	column string
	value  string
}

// EqLiteral inlines a quoted constant so partial indexes with a matching
// predicate stay usable.
func EqLiteral(column, value string) Condition {
	return literalCondition{column: column, value: value}
}

func (c literalCondition) writeTo(w *sqlWriter) {
	w.WriteString(c.column + " = '" + strings.ReplaceAll(c.value, "'", "''") + "'")
}

type anyOfCondition struct {
	conditions []Condition
}

// Or joins conditions with OR inside parentheses.
func Or(conditions ...Condition) Condition {
	return anyOfCondition{conditions: conditions}
}

func (c anyOfCondition) writeTo(w *sqlWriter) {
	if len(c.conditions) == 0 {
		w.WriteString("1=0")
		return
	}
	w.WriteByte('(')
	w.join(c.conditions, " OR ")
	w.WriteByte(')')
}

type exprCondition struct {
	expr string
	args []any
}

// Expr embeds raw SQL; each ? becomes the next positional placeholder.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) writeTo(w *sqlWriter) {
	w.expr(c.expr, c.args)
}
