package finalize

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"ParkLedger/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Lets numeric tags such as gte=0 apply to decimal.Decimal fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// ValidationError lists the fields that made a finalize input invalid.
type ValidationError struct {
	Kind   model.ModuleKind
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("invalid %s finalize: %s", e.Kind, strings.Join(parts, ", "))
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the shape of state and rejects negative counts or amounts.
func Validate(kind model.ModuleKind, state model.WorkingState) error {
	if state.Kind == "" {
		state.Kind = kind
	}
	if state.Kind != kind {
		return &ValidationError{Kind: kind, Fields: map[string]string{"kind": "does not match " + string(kind)}}
	}
	if err := state.CheckShape(); err != nil {
		return &ValidationError{Kind: kind, Fields: map[string]string{"kind": err.Error()}}
	}

	fields := make(map[string]string)
	var sheet interface{} = state.Wristbands
	if state.Sales != nil {
		sheet = state.Sales
		for p, v := range state.Sales.MobileMoney {
			if p == "" {
				fields["mobile_money"] = "empty provider id"
			}
			if v.IsNegative() {
				fields["mobile_money."+string(p)] = "gte"
			}
		}
	}
	if err := validate.Struct(sheet); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate %s: %w", kind, err)
		}
		for _, fe := range verrs {
			fields[fieldPath(fe.Namespace())] = fe.Tag()
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Kind: kind, Fields: fields}
	}
	return nil
}

// fieldPath drops the struct name prefix: "SalesSheet.Items[0].Quantity" -> "Items[0].Quantity".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
