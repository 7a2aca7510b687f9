package inspection

import (
	"errors"
	"math"
	"testing"

	"dealerinspect/models"
)

func fieldTok(fieldID string, order int) models.FormulaToken {
	return models.FormulaToken{TokenType: models.TokenField, FieldID: fieldID, Order: order}
}

func opTok(op string, order int) models.FormulaToken {
	return models.FormulaToken{TokenType: models.TokenOperator, Operator: op, Order: order}
}

func TestEvaluate(t *testing.T) {
	values := map[string]float64{"a": 10, "b": 5, "c": 2}

	tests := []struct {
		name    string
		formula []models.FormulaToken
		want    float64
	}{
		{
			name:    "addition",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("+", 1), fieldTok("b", 2)},
			want:    15,
		},
		{
			name:    "subtraction",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("-", 1), fieldTok("b", 2)},
			want:    5,
		},
		{
			name:    "multiplication binds tighter than addition",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("+", 1), fieldTok("b", 2), opTok("*", 3), fieldTok("c", 4)},
			want:    20,
		},
		{
			name: "parentheses override precedence",
			formula: []models.FormulaToken{
				opTok("(", 0), fieldTok("a", 1), opTok("+", 2), fieldTok("b", 3), opTok(")", 4),
				opTok("*", 5), fieldTok("c", 6),
			},
			want: 30,
		},
		{
			name:    "division",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("/", 1), fieldTok("b", 2)},
			want:    2,
		},
		{
			name:    "division by zero yields zero",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("/", 1), fieldTok("zero", 2)},
			want:    0,
		},
		{
			name:    "missing field reads as zero",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("+", 1), fieldTok("ghost", 2)},
			want:    10,
		},
		{
			name:    "leading unary minus",
			formula: []models.FormulaToken{opTok("-", 0), fieldTok("a", 1), opTok("+", 2), fieldTok("b", 3)},
			want:    -5,
		},
		{
			name: "unary minus inside parentheses",
			formula: []models.FormulaToken{
				fieldTok("a", 0), opTok("*", 1),
				opTok("(", 2), opTok("-", 3), fieldTok("c", 4), opTok(")", 5),
			},
			want: -20,
		},
		{
			name: "order index wins over array position",
			formula: []models.FormulaToken{
				fieldTok("b", 2), opTok("+", 1), fieldTok("a", 0),
			},
			want: 15,
		},
		{
			name:    "single field",
			formula: []models.FormulaToken{fieldTok("c", 0)},
			want:    2,
		},
		{
			name: "left associative subtraction",
			formula: []models.FormulaToken{
				fieldTok("a", 0), opTok("-", 1), fieldTok("b", 2), opTok("-", 3), fieldTok("c", 4),
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.formula, values)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateSameResultRegardlessOfStorageOrder(t *testing.T) {
	values := map[string]float64{"a": 7, "b": 3}
	sorted := []models.FormulaToken{fieldTok("a", 0), opTok("*", 1), fieldTok("b", 2)}
	shuffled := []models.FormulaToken{opTok("*", 1), fieldTok("b", 2), fieldTok("a", 0)}

	want, err := Evaluate(sorted, values)
	if err != nil {
		t.Fatalf("Evaluate(sorted) error = %v", err)
	}
	got, err := Evaluate(shuffled, values)
	if err != nil {
		t.Fatalf("Evaluate(shuffled) error = %v", err)
	}
	if got != want {
		t.Errorf("storage order changed result: %v vs %v", got, want)
	}
}

func TestValidateFormulaRejections(t *testing.T) {
	tests := []struct {
		name    string
		formula []models.FormulaToken
	}{
		{name: "empty formula", formula: nil},
		{
			name:    "no field reference",
			formula: []models.FormulaToken{opTok("(", 0), opTok(")", 1)},
		},
		{
			name:    "trailing operator",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("+", 1)},
		},
		{
			name:    "consecutive operators",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("+", 1), opTok("*", 2), fieldTok("b", 3)},
		},
		{
			name:    "double unary minus",
			formula: []models.FormulaToken{opTok("-", 0), opTok("-", 1), fieldTok("a", 2)},
		},
		{
			name:    "unbalanced open parenthesis",
			formula: []models.FormulaToken{opTok("(", 0), fieldTok("a", 1), opTok("+", 2), fieldTok("b", 3)},
		},
		{
			name:    "unbalanced close parenthesis",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok(")", 1)},
		},
		{
			name:    "unknown operator",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("%", 1), fieldTok("b", 2)},
		},
		{
			name:    "field token without field id",
			formula: []models.FormulaToken{fieldTok("", 0)},
		},
		{
			name:    "duplicate order index",
			formula: []models.FormulaToken{fieldTok("a", 0), opTok("+", 0), fieldTok("b", 1)},
		},
		{
			name: "unknown token type",
			formula: []models.FormulaToken{
				{TokenType: "constant", Order: 0},
			},
		},
		{
			name:    "adjacent fields without operator",
			formula: []models.FormulaToken{fieldTok("a", 0), fieldTok("b", 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormula(tt.formula)
			if err == nil {
				t.Fatalf("ValidateFormula() accepted an invalid formula")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ValidateFormula() error = %T, want *ValidationError", err)
			}
		})
	}
}

func TestEvaluateCategory(t *testing.T) {
	cat := &models.Category{
		CategoryID: "recon",
		Calculations: []models.Calculation{
			{
				CalculationID: "c1",
				Name:          "Total Recon Cost",
				InternalName:  "total_recon_cost",
				IsActive:      true,
				Formula:       []models.FormulaToken{fieldTok("parts", 0), opTok("+", 1), fieldTok("labour", 2)},
			},
			{
				CalculationID: "c2",
				Name:          "Disabled",
				InternalName:  "disabled",
				IsActive:      false,
				Formula:       []models.FormulaToken{fieldTok("parts", 0)},
			},
		},
	}
	results, err := EvaluateCategory(cat, map[string]float64{"parts": 120.5, "labour": 80})
	if err != nil {
		t.Fatalf("EvaluateCategory() error = %v", err)
	}
	if got := results["total_recon_cost"]; got != 200.5 {
		t.Errorf("total_recon_cost = %v, want 200.5", got)
	}
	if _, present := results["disabled"]; present {
		t.Errorf("inactive calculation must not be evaluated")
	}
}

func TestEvaluateCategoryRejectsBrokenFormula(t *testing.T) {
	cat := &models.Category{
		Calculations: []models.Calculation{
			{
				CalculationID: "c1",
				Name:          "Broken",
				InternalName:  "broken",
				IsActive:      true,
				Formula:       []models.FormulaToken{fieldTok("a", 0), opTok("+", 1)},
			},
		},
	}
	if _, err := EvaluateCategory(cat, nil); err == nil {
		t.Fatalf("EvaluateCategory() accepted a broken formula")
	}
}
