package core

// errors.go defines the categorized error signal returned by the CRM
// backend's create endpoint and the mapping from arbitrary submission errors
// to outcome categories.
//
// The backend speaks in three categories: duplicate (corporate-number
// conflict), validation (server-side field rejection) and other. Transport
// failures and anything uncategorized fall into "other" with a best-effort
// user message.

import (
	"errors"
	"fmt"
	"strings"
)

// FatalNotice is the generic failure message shown when the pipeline itself
// breaks (as opposed to individual rows failing).
const FatalNotice = "インポート処理でエラーが発生しました"

// OutcomeCategory classifies the result of submitting one company.
type OutcomeCategory string

const (
	OutcomeSuccess    OutcomeCategory = "success"
	OutcomeDuplicate  OutcomeCategory = "duplicate"
	OutcomeValidation OutcomeCategory = "validation"
	OutcomeOther      OutcomeCategory = "other"
)

// APIError is the categorized error signal from the CRM backend.
type APIError struct {
	Category   OutcomeCategory
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("crm api: %s (%d): %s", e.Category, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("crm api: %s (%d)", e.Category, e.StatusCode)
}

// Default per-category messages, used when the backend sends no detail.
var categoryMessages = map[OutcomeCategory]string{
	OutcomeDuplicate:  "法人番号が既に登録されています",
	OutcomeValidation: "入力内容に不備があります",
	OutcomeOther:      "エラーが発生しました",
}

// errorPatterns maps raw transport error text (case-insensitive substring
// match, first hit wins) to friendlier messages for the "other" bucket.
var errorPatterns = []struct {
	pattern string
	message string
}{
	{"connection refused", "サーバーに接続できませんでした"},
	{"context deadline exceeded", "リクエストがタイムアウトしました"},
	{"timeout", "リクエストがタイムアウトしました"},
	{"no such host", "サーバーに接続できませんでした"},
}

// ClassifyError maps a submission error to its outcome category and the
// message retained for the result summary. nil maps to success.
func ClassifyError(err error) (OutcomeCategory, string) {
	if err == nil {
		return OutcomeSuccess, ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		cat := apiErr.Category
		if cat != OutcomeDuplicate && cat != OutcomeValidation {
			cat = OutcomeOther
		}
		if apiErr.Message != "" {
			return cat, apiErr.Message
		}
		return cat, categoryMessages[cat]
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return OutcomeOther, ep.message
		}
	}

	return OutcomeOther, categoryMessages[OutcomeOther]
}
