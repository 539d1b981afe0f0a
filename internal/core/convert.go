package core

// convert.go coerces validated raw rows into typed company payloads.
//
// The converter assumes its caller already ran ValidateRows and only passes
// clean rows; it does not re-validate. On malformed input it coerces
// best-effort: a non-numeric employee count becomes 0, a non-numeric revenue
// becomes nil. Revenue stays a pointer so "unknown" is distinguishable from
// an actual zero.

import (
	"strconv"
	"strings"
)

// CompanyPayload is the typed form of a RawRow, ready for submission to the
// CRM backend's company create endpoint.
type CompanyPayload struct {
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	EmployeeCount int      `json:"employee_count"`
	Revenue       *float64 `json:"revenue,omitempty"`
	Location      string   `json:"location"`
	Website       string   `json:"website"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Notes         string   `json:"notes"`
	Status        string   `json:"status"`
	IsGlobalNG    bool     `json:"is_global_ng"`
}

// ConvertRows converts rows into company payloads, preserving input order.
// Input rows are never mutated. IsGlobalNG is always false: the CSV format
// has no column for it and new companies start off the global NG list.
func ConvertRows(rows []RawRow) []CompanyPayload {
	payloads := make([]CompanyPayload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, convertRow(row))
	}
	return payloads
}

func convertRow(row RawRow) CompanyPayload {
	employees := 0
	if n, ok := parseNumber(strings.TrimSpace(row.Get(FieldEmployeeCount))); ok && n >= 0 {
		employees = int(n)
	}

	var revenue *float64
	if n, ok := parseNumber(strings.TrimSpace(row.Get(FieldRevenue))); ok && n >= 0 {
		revenue = &n
	}

	return CompanyPayload{
		Name:          strings.TrimSpace(row.Get(FieldName)),
		Industry:      strings.TrimSpace(row.Get(FieldIndustry)),
		EmployeeCount: employees,
		Revenue:       revenue,
		Location:      strings.TrimSpace(row.Get(FieldLocation)),
		Website:       strings.TrimSpace(row.Get(FieldWebsite)),
		Phone:         strings.TrimSpace(row.Get(FieldPhone)),
		Email:         strings.TrimSpace(row.Get(FieldEmail)),
		Notes:         strings.TrimSpace(row.Get(FieldNotes)),
		Status:        strings.ToLower(strings.TrimSpace(row.Get(FieldStatus))),
		IsGlobalNG:    false,
	}
}

// parseNumber parses a numeric cell value. Thousands separators and
// full-width digits are tolerated since the data often comes out of Excel.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	s = normalizeDigits(s)

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizeDigits converts full-width digits and signs to ASCII.
func normalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '０' && r <= '９':
			return '0' + (r - '０')
		case r == '．':
			return '.'
		case r == '－':
			return '-'
		default:
			return r
		}
	}, s)
}
