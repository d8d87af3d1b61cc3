package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConditionOp is the comparison operator of a single trigger condition.
type ConditionOp string

const (
	OpEquals      ConditionOp = "equals"
	OpContains    ConditionOp = "contains"
	OpGreaterThan ConditionOp = "greaterThan"
	OpLessThan    ConditionOp = "lessThan"
)

// Condition is one parsed condition entry. A bare value in the stored
// document becomes {Op: equals, Value: v}.
type Condition struct {
	Op    ConditionOp `json:"operator"`
	Value interface{} `json:"value"`
}

// ConditionSet maps event-context fields to conditions. All entries must
// match for a rule to fire.
type ConditionSet map[string]Condition

// ParseConditions validates and converts the persisted conditions document.
// An empty document yields an empty (always matching) set. Entries shaped
// like {"operator": ..., "value": ...} select an operator; any other value
// falls back to direct equality.
func ParseConditions(doc string) (ConditionSet, error) {
	set := ConditionSet{}
	if strings.TrimSpace(doc) == "" {
		return set, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, fmt.Errorf("conditions document: %w", err)
	}
	for field, msg := range raw {
		var op struct {
			Operator string      `json:"operator"`
			Value    interface{} `json:"value"`
		}
		if err := json.Unmarshal(msg, &op); err == nil && op.Operator != "" {
			switch ConditionOp(op.Operator) {
			case OpEquals, OpContains, OpGreaterThan, OpLessThan:
				set[field] = Condition{Op: ConditionOp(op.Operator), Value: op.Value}
				continue
			default:
				return nil, fmt.Errorf("condition %q: unknown operator %q", field, op.Operator)
			}
		}
		var val interface{}
		if err := json.Unmarshal(msg, &val); err != nil {
			return nil, fmt.Errorf("condition %q: %w", field, err)
		}
		set[field] = Condition{Op: OpEquals, Value: val}
	}
	return set, nil
}

// Matches reports whether every condition holds against the event context.
// Missing fields and type mismatches count as no-match, never as an error.
func (cs ConditionSet) Matches(evt EventContext) bool {
	for field, cond := range cs {
		val, ok := evt[field]
		if !ok {
			return false
		}
		if !cond.matches(val) {
			return false
		}
	}
	return true
}

func (c Condition) matches(actual interface{}) bool {
	switch c.Op {
	case OpEquals:
		return compareEqual(actual, c.Value)
	case OpContains:
		return compareContains(actual, c.Value)
	case OpGreaterThan:
		return compareNumeric(actual, c.Value) > 0
	case OpLessThan:
		return compareNumeric(actual, c.Value) < 0
	default:
		return false
	}
}

// compareEqual tolerates float64/int mixing so JSON-decoded condition values
// compare cleanly against native context values.
func compareEqual(a, b interface{}) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compareContains supports substring match on strings and membership on
// slices. Other container types are treated as no-match.
func compareContains(actual, want interface{}) bool {
	switch v := actual.(type) {
	case string:
		return strings.Contains(v, fmt.Sprintf("%v", want))
	case []string:
		for _, item := range v {
			if compareEqual(item, want) {
				return true
			}
		}
	case []interface{}:
		for _, item := range v {
			if compareEqual(item, want) {
				return true
			}
		}
	}
	return false
}

// compareNumeric performs three-way comparison, 0 for incomparable types.
func compareNumeric(a, b interface{}) int {
	na, nb, ok := asNumbers(a, b)
	if !ok {
		return 0
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

func asNumbers(a, b interface{}) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
