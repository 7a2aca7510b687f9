package inspection

import (
	"sort"

	"dealerinspect/models"
)

// prec returns operator precedence; unary minus ("neg") binds tightest.
func prec(op string) int {
	switch op {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	case "neg":
		return 3
	}
	return 0
}

// ValidateFormula checks the structural invariants of a formula token list:
// known operators, balanced parentheses, no consecutive binary operators
// (a single unary minus in operand position is allowed), at least one field
// reference, no trailing operator, and unique order indexes. Returns a
// ValidationError naming the violated invariant, or nil.
func ValidateFormula(formula []models.FormulaToken) error {
	if len(formula) == 0 {
		return invalid("formula must not be empty")
	}

	tokens := sortedTokens(formula)

	seenOrder := make(map[int]bool, len(tokens))
	for _, t := range tokens {
		if seenOrder[t.Order] {
			return invalid("duplicate token order %d", t.Order)
		}
		seenOrder[t.Order] = true
	}

	depth := 0
	fieldRefs := 0
	expectOperand := true
	unaryPending := false

	for _, t := range tokens {
		switch t.TokenType {
		case models.TokenField:
			if t.FieldID == "" {
				return invalid("field token without field_id")
			}
			if !expectOperand {
				return invalid("operator expected before field %s", t.FieldID)
			}
			fieldRefs++
			expectOperand = false
			unaryPending = false
		case models.TokenOperator:
			switch t.Operator {
			case "(":
				if !expectOperand {
					return invalid("operator expected before opening parenthesis")
				}
				depth++
				unaryPending = false
			case ")":
				if expectOperand {
					return invalid("operand expected before closing parenthesis")
				}
				depth--
				if depth < 0 {
					return invalid("unbalanced parentheses")
				}
			case "+", "-", "*", "/":
				if expectOperand {
					// one leading minus acts as negation
					if t.Operator == "-" && !unaryPending {
						unaryPending = true
						continue
					}
					return invalid("consecutive operators")
				}
				expectOperand = true
				unaryPending = false
			default:
				return invalid("unknown operator %q", t.Operator)
			}
		default:
			return invalid("unknown token type %q", string(t.TokenType))
		}
	}

	if depth != 0 {
		return invalid("unbalanced parentheses")
	}
	if expectOperand {
		return invalid("formula ends with an operator")
	}
	if fieldRefs == 0 {
		return invalid("formula must reference at least one field")
	}
	return nil
}

// Evaluate computes a formula against a field-value map. Tokens are ordered
// by their explicit order index, never by array position. Two deliberately
// permissive defaults apply: a field missing from values evaluates as 0, and
// division by zero yields 0, so partially-filled forms still show a running
// total. Malformed formulas are rejected with a ValidationError.
//
// Evaluate is pure and safe to call concurrently.
func Evaluate(formula []models.FormulaToken, values map[string]float64) (float64, error) {
	if err := ValidateFormula(formula); err != nil {
		return 0, err
	}

	tokens := sortedTokens(formula)

	// shunting-yard to postfix
	var out []rpnItem
	var ops []string
	expectOperand := true

	for _, t := range tokens {
		if t.TokenType == models.TokenField {
			out = append(out, rpnItem{value: values[t.FieldID]})
			expectOperand = false
			continue
		}
		switch t.Operator {
		case "(":
			ops = append(ops, "(")
			expectOperand = true
		case ")":
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				out = append(out, rpnItem{op: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			if len(ops) > 0 {
				ops = ops[:len(ops)-1] // discard "("
			}
			expectOperand = false
		default:
			op := t.Operator
			if op == "-" && expectOperand {
				op = "neg"
			}
			for len(ops) > 0 && ops[len(ops)-1] != "(" && prec(ops[len(ops)-1]) >= prec(op) && op != "neg" {
				out = append(out, rpnItem{op: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, op)
			expectOperand = true
		}
	}
	for len(ops) > 0 {
		out = append(out, rpnItem{op: ops[len(ops)-1]})
		ops = ops[:len(ops)-1]
	}

	// evaluate postfix
	var stack []float64
	for _, it := range out {
		if it.op == "" {
			stack = append(stack, it.value)
			continue
		}
		if it.op == "neg" {
			if len(stack) < 1 {
				return 0, invalid("malformed expression")
			}
			stack[len(stack)-1] = -stack[len(stack)-1]
			continue
		}
		if len(stack) < 2 {
			return 0, invalid("malformed expression")
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		var r float64
		switch it.op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			if b == 0 {
				r = 0
			} else {
				r = a / b
			}
		}
		stack = append(stack, r)
	}
	if len(stack) != 1 {
		return 0, invalid("malformed expression")
	}
	return stack[0], nil
}

// EvaluateCategory evaluates every active calculation of a category and
// returns internal_name -> value. Inactive calculations are skipped.
func EvaluateCategory(cat *models.Category, values map[string]float64) (map[string]float64, error) {
	results := make(map[string]float64, len(cat.Calculations))
	for _, calc := range cat.Calculations {
		if !calc.IsActive {
			continue
		}
		v, err := Evaluate(calc.Formula, values)
		if err != nil {
			return nil, invalid("calculation %s: %v", calc.InternalName, err)
		}
		results[calc.InternalName] = v
	}
	return results, nil
}

type rpnItem struct {
	op    string // empty for operands
	value float64
}

func sortedTokens(formula []models.FormulaToken) []models.FormulaToken {
	tokens := make([]models.FormulaToken, len(formula))
	copy(tokens, formula)
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].Order < tokens[j].Order })
	return tokens
}
