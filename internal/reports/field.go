package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

// Field names a high-frequency report field that is edited with debounce.
type Field string

const (
	FieldDescription   Field = "description"
	FieldAdminNotes    Field = "admin_notes"
	FieldEmployeeNotes Field = "employee_notes"
	FieldTotalCost     Field = "total_cost"
	FieldPartsCost     Field = "parts_cost"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidAmount = errors.New("amount must be a non-negative number")
)

func ParseField(s string) (Field, bool) {
	switch f := Field(strings.TrimSpace(s)); f {
	case FieldDescription, FieldAdminNotes, FieldEmployeeNotes, FieldTotalCost, FieldPartsCost:
		return f, true
	}
	return "", false
}

// AdminOnly reports whether only admins may write f.
func (f Field) AdminOnly() bool {
	return f == FieldAdminNotes || f == FieldTotalCost || f == FieldPartsCost
}

func (f Field) numeric() bool { return f == FieldTotalCost || f == FieldPartsCost }

// Normalize coerces a loosely typed value (as decoded from JSON or a flag)
// into string for text fields and float64 for cost fields. Costs must be
// finite and non-negative.
func (f Field) Normalize(v any) (any, error) {
	if f.numeric() {
		n, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%s: %w", f, ErrInvalidAmount)
		}
		return n, nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case *string:
		if s == nil {
			return "", nil
		}
		return *s, nil
	case nil:
		return "", nil
	}
	return nil, fmt.Errorf("%s: expected text, got %T", f, v)
}

// PatchFor builds the single-field PUT body for f.
func PatchFor(f Field, v any) (models.ReportPatch, error) {
	nv, err := f.Normalize(v)
	if err != nil {
		return models.ReportPatch{}, err
	}
	var p models.ReportPatch
	switch f {
	case FieldDescription:
		s := nv.(string)
		p.Description = &s
	case FieldAdminNotes:
		s := nv.(string)
		p.AdminNotes = &s
	case FieldEmployeeNotes:
		s := nv.(string)
		p.EmployeeNotes = &s
	case FieldTotalCost:
		n := nv.(float64)
		p.TotalCost = &n
	case FieldPartsCost:
		n := nv.(float64)
		p.PartsCost = &n
	default:
		return p, ErrUnknownField
	}
	return p, nil
}

// FieldValue reads f from r. Cost fields come back as *float64 (possibly nil).
func FieldValue(r models.ServiceReport, f Field) any {
	switch f {
	case FieldDescription:
		return r.Description
	case FieldAdminNotes:
		return r.AdminNotes
	case FieldEmployeeNotes:
		return r.EmployeeNotes
	case FieldTotalCost:
		return copyFloat(r.TotalCost)
	case FieldPartsCost:
		return copyFloat(r.PartsCost)
	}
	return nil
}

// SetField writes v into r and refreshes gross profit when a cost changes.
// A nil value on a cost field clears it.
func SetField(r *models.ServiceReport, f Field, v any) error {
	if f.numeric() {
		var cost *float64
		if p, ok := v.(*float64); ok {
			cost = copyFloat(p)
		} else if v != nil {
			n, err := toFloat(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			cost = &n
		}
		if f == FieldTotalCost {
			r.TotalCost = cost
		} else {
			r.PartsCost = cost
		}
		if r.HasFinancials() {
			gp := ComputeGrossProfit(r.TotalCost, r.PartsCost)
			r.GrossProfit = &gp
		} else {
			r.GrossProfit = nil
		}
		return nil
	}
	nv, err := f.Normalize(v)
	if err != nil {
		return err
	}
	switch f {
	case FieldDescription:
		r.Description = nv.(string)
	case FieldAdminNotes:
		r.AdminNotes = nv.(string)
	case FieldEmployeeNotes:
		r.EmployeeNotes = nv.(string)
	default:
		return ErrUnknownField
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case *float64:
		if n == nil {
			return 0, errors.New("missing amount")
		}
		return *n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected amount, got %T", v)
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
