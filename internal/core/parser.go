package core

// parser.go turns raw CSV text into RawRows keyed by the fixed schema.
//
// The parser is deliberately forgiving: the first non-empty record is the
// header and is discarded (columns are positional, header labels are not
// matched), short rows are padded with empty strings, blank lines are
// skipped, and malformed records never abort the parse. Anything wrong with
// the data surfaces later as a ValidationError, not here.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ParseCSV parses CSV text into rows aligned to FieldOrder.
//
// Row numbering starts at 2 (row 1 is the header), so an input with N data
// lines yields rows numbered 2..N+1 in order. Missing trailing columns are
// treated as empty strings; extra columns are ignored.
func ParseCSV(text string) []RawRow {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows []RawRow
	headerSeen := false

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed record; skip it rather than failing the whole file.
			continue
		}
		if isEmptyRecord(record) {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		fields := make(map[FieldKey]string, len(FieldOrder))
		for i, key := range FieldOrder {
			if i < len(record) {
				fields[key] = record[i]
			} else {
				fields[key] = ""
			}
		}
		rows = append(rows, RawRow{Num: len(rows) + 2, Fields: fields})
	}

	return rows
}

// WriteCSV renders rows back to CSV text with the localized header row.
// ParseCSV(WriteCSV(rows)) round-trips for rows without embedded delimiters.
func WriteCSV(rows []RawRow) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(FieldOrder))
	for i, key := range FieldOrder {
		header[i] = Label(key)
	}
	_ = w.Write(header)

	for _, row := range rows {
		record := make([]string, len(FieldOrder))
		for i, key := range FieldOrder {
			record[i] = row.Get(key)
		}
		_ = w.Write(record)
	}

	w.Flush()
	return buf.String()
}

// TemplateCSV returns the downloadable import template: the localized header
// row plus one example row.
func TemplateCSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(FieldOrder))
	for i, key := range FieldOrder {
		header[i] = Label(key)
	}
	_ = w.Write(header)
	_ = w.Write([]string{
		"株式会社サンプル",
		"IT",
		"150",
		"5000000",
		"東京都港区",
		"https://example.co.jp",
		"03-1234-5678",
		"info@example.co.jp",
		"展示会で名刺交換",
		"prospect",
	})

	w.Flush()
	return buf.String()
}

// ValidationErrorsCSV renders pre-submission validation errors as CSV so the
// operator can fix the source file offline.
func ValidationErrorsCSV(errs []ValidationError) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"行番号", "列", "値", "エラー内容"})
	for _, e := range errs {
		_ = w.Write([]string{
			fmt.Sprintf("%d", e.Row),
			Label(e.Field),
			e.Value,
			e.Message,
		})
	}

	w.Flush()
	return buf.String()
}

// DecodeText converts uploaded file bytes to UTF-8 text. Files exported from
// Japanese Excel environments are frequently Shift_JIS, so non-UTF-8 input is
// run through a Shift_JIS decoder before falling back to byte-wise
// replacement of invalid sequences.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return string(data)
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err == nil && utf8.Valid(decoded) {
		return string(decoded)
	}

	return string(sanitizeUTF8(data))
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
