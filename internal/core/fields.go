package core

// FieldKey identifies a column in the company CSV schema.
type FieldKey string

const (
	FieldName          FieldKey = "name"
	FieldIndustry      FieldKey = "industry"
	FieldEmployeeCount FieldKey = "employee_count"
	FieldRevenue       FieldKey = "revenue"
	FieldLocation      FieldKey = "location"
	FieldWebsite       FieldKey = "website"
	FieldPhone         FieldKey = "phone"
	FieldEmail         FieldKey = "email"
	FieldNotes         FieldKey = "notes"
	FieldStatus        FieldKey = "status"
)

// FieldOrder is the fixed column order of the company CSV. It drives both
// parsing (values are aligned positionally) and template/export generation.
var FieldOrder = []FieldKey{
	FieldName,
	FieldIndustry,
	FieldEmployeeCount,
	FieldRevenue,
	FieldLocation,
	FieldWebsite,
	FieldPhone,
	FieldEmail,
	FieldNotes,
	FieldStatus,
}

// fieldLabels maps field keys to the localized column labels shown to
// operators. Validation messages and the downloadable template use these,
// never the header labels of the uploaded file.
var fieldLabels = map[FieldKey]string{
	FieldName:          "企業名",
	FieldIndustry:      "業種",
	FieldEmployeeCount: "従業員数",
	FieldRevenue:       "売上高",
	FieldLocation:      "所在地",
	FieldWebsite:       "Webサイト",
	FieldPhone:         "電話番号",
	FieldEmail:         "メールアドレス",
	FieldNotes:         "備考",
	FieldStatus:        "ステータス",
}

// Label returns the localized column label for a field key.
func Label(key FieldKey) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	return string(key)
}

// CompanyStatuses lists the recognized status codes for the status column.
var CompanyStatuses = []string{"lead", "prospect", "active", "inactive"}

// IsCompanyStatus reports whether s is a recognized status code.
func IsCompanyStatus(s string) bool {
	for _, v := range CompanyStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// RawRow is one parsed data row of the company CSV. Values are kept as raw
// strings until the converter coerces them; Num is the 1-based row number in
// the source file, so the first data row is 2 (row 1 is the header).
type RawRow struct {
	Num    int
	Fields map[FieldKey]string
}

// Get returns the raw value for a field, or "" if absent.
func (r RawRow) Get(key FieldKey) string {
	return r.Fields[key]
}
