package core

// validate.go applies the per-field rules to parsed rows before anything is
// sent to the backend. Validation is total: every rule is evaluated for every
// row so the operator gets the complete error report in one pass, and any
// error at all blocks submission of the whole batch.

import (
	"fmt"
	"strings"
)

// Validation message templates. These literal strings are part of the
// user-visible contract.
const (
	msgRequired      = "必須項目です"
	msgNumeric       = "数値で入力してください"
	msgNonNegative   = "0以上の数値で入力してください"
	msgInvalidStatus = "無効なステータスです（lead / prospect / active / inactive のいずれか）"
)

// ValidationError describes a single failed rule for one field of one row.
type ValidationError struct {
	Row     int      `json:"row"`
	Field   FieldKey `json:"field"`
	Value   string   `json:"value"`
	Message string   `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("行%d %s", e.Row, e.Message)
}

// ValidateRows checks every row against the field rules and returns all
// errors in row-then-field order. A row with zero errors is import-eligible.
func ValidateRows(rows []RawRow) []ValidationError {
	var errs []ValidationError
	for _, row := range rows {
		errs = append(errs, validateRow(row)...)
	}
	return errs
}

func validateRow(row RawRow) []ValidationError {
	var errs []ValidationError

	appendErr := func(key FieldKey, value, reason string) {
		errs = append(errs, ValidationError{
			Row:     row.Num,
			Field:   key,
			Value:   value,
			Message: fmt.Sprintf("「%s」列: %s", Label(key), reason),
		})
	}

	if strings.TrimSpace(row.Get(FieldName)) == "" {
		appendErr(FieldName, row.Get(FieldName), msgRequired)
	}

	for _, key := range []FieldKey{FieldEmployeeCount, FieldRevenue} {
		raw := strings.TrimSpace(row.Get(key))
		if raw == "" {
			continue
		}
		n, ok := parseNumber(raw)
		switch {
		case !ok:
			appendErr(key, raw, msgNumeric)
		case n < 0:
			appendErr(key, raw, msgNonNegative)
		}
	}

	if status := strings.TrimSpace(row.Get(FieldStatus)); status != "" {
		if !IsCompanyStatus(strings.ToLower(status)) {
			appendErr(FieldStatus, status, msgInvalidStatus)
		}
	}

	return errs
}
