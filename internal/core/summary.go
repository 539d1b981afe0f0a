package core

// summary.go partitions submission outcomes into the categorized result the
// operator sees after an import finishes. The section header phrasings are
// fixed, user-visible strings.

import "fmt"

// Section header templates. Literal phrasing is part of the contract with
// the front-end.
const (
	headerSuccess       = "登録に成功した企業（%d件）"
	headerDuplicate     = "法人番号の重複で登録できなかった企業（%d件）"
	headerValidation    = "入力内容の不備で登録できなかった企業（%d件）"
	headerOther         = "その他のエラー（%d件）"
	headerMissingCorpNo = "法人番号が未設定の企業（%d件）"
)

// ErrorItem is one failed company retained for display.
type ErrorItem struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ImportResult is the aggregate outcome of one import batch. It is the only
// value retained for display after the session completes.
type ImportResult struct {
	Total                int `json:"total"`
	SuccessCount         int `json:"successCount"`
	DuplicateCount       int `json:"duplicateCount"`
	ValidationErrorCount int `json:"validationErrorCount"`
	OtherErrorCount      int `json:"otherErrorCount"`

	Duplicates         []ErrorItem `json:"duplicates,omitempty"`
	ValidationFailures []ErrorItem `json:"validationFailures,omitempty"`
	OtherErrors        []ErrorItem `json:"otherErrors,omitempty"`

	// MissingCorporateNumber counts successfully imported companies whose
	// record lacks a corporate number. Informational, not a failure bucket.
	MissingCorporateNumber int `json:"missingCorporateNumber"`
}

// ResultSection is a displayable slice of the result: a counted header plus
// the retained items.
type ResultSection struct {
	Title string      `json:"title"`
	Items []ErrorItem `json:"items,omitempty"`
}

// Summarize partitions outcomes into the four buckets. Every outcome lands
// in exactly one bucket, so the bucket counts always sum to len(outcomes).
func Summarize(outcomes []SubmissionOutcome) ImportResult {
	result := ImportResult{Total: len(outcomes)}

	for _, o := range outcomes {
		switch o.Category {
		case OutcomeSuccess:
			result.SuccessCount++
			if o.MissingCorporateNumber {
				result.MissingCorporateNumber++
			}
		case OutcomeDuplicate:
			result.DuplicateCount++
			result.Duplicates = append(result.Duplicates, ErrorItem{Name: o.Name, Message: o.Message})
		case OutcomeValidation:
			result.ValidationErrorCount++
			result.ValidationFailures = append(result.ValidationFailures, ErrorItem{Name: o.Name, Message: o.Message})
		default:
			result.OtherErrorCount++
			result.OtherErrors = append(result.OtherErrors, ErrorItem{Name: o.Name, Message: o.Message})
		}
	}

	return result
}

// Sections renders the result as displayable sections with counted headers.
// Failure sections are included only when non-empty; the success section is
// always present, and the missing-corporate-number section follows it when
// the count is non-zero.
func (r ImportResult) Sections() []ResultSection {
	sections := []ResultSection{
		{Title: fmt.Sprintf(headerSuccess, r.SuccessCount)},
	}

	if r.MissingCorporateNumber > 0 {
		sections = append(sections, ResultSection{
			Title: fmt.Sprintf(headerMissingCorpNo, r.MissingCorporateNumber),
		})
	}
	if r.DuplicateCount > 0 {
		sections = append(sections, ResultSection{
			Title: fmt.Sprintf(headerDuplicate, r.DuplicateCount),
			Items: r.Duplicates,
		})
	}
	if r.ValidationErrorCount > 0 {
		sections = append(sections, ResultSection{
			Title: fmt.Sprintf(headerValidation, r.ValidationErrorCount),
			Items: r.ValidationFailures,
		})
	}
	if r.OtherErrorCount > 0 {
		sections = append(sections, ResultSection{
			Title: fmt.Sprintf(headerOther, r.OtherErrorCount),
			Items: r.OtherErrors,
		})
	}

	return sections
}
