package validate

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Collect drops nil results; nil when everything passed.
func Collect(fs ...*ErrField) Errs {
	var out Errs
	for _, f := range fs {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func AmountPresent(field string, v *decimal.Decimal) *ErrField {
	if v == nil {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// IntQuery parses an optional integer query parameter; empty yields def.
func IntQuery(field, raw string, def, min int) (int, *ErrField) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, &ErrField{Field: field, Msg: "must be an integer"}
	}
	if n < min {
		return def, &ErrField{Field: field, Msg: "must be >= " + strconv.Itoa(min)}
	}
	return n, nil
}
