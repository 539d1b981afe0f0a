package core

import (
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Summarize Tests
// ----------------------------------------------------------------------------

func TestSummarize(t *testing.T) {
	outcomes := []SubmissionOutcome{
		{Category: OutcomeSuccess, Name: "Alpha"},
		{Category: OutcomeDuplicate, Name: "Beta", Message: "法人番号が既に登録されています"},
		{Category: OutcomeSuccess, Name: "Gamma"},
	}

	result := Summarize(outcomes)

	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	if result.SuccessCount != 2 {
		t.Errorf("success count = %d, want 2", result.SuccessCount)
	}
	if result.DuplicateCount != 1 {
		t.Errorf("duplicate count = %d, want 1", result.DuplicateCount)
	}
	if result.ValidationErrorCount != 0 || result.OtherErrorCount != 0 {
		t.Errorf("other buckets non-zero: validation=%d other=%d",
			result.ValidationErrorCount, result.OtherErrorCount)
	}
	if len(result.Duplicates) != 1 || result.Duplicates[0].Name != "Beta" {
		t.Errorf("duplicates = %+v", result.Duplicates)
	}
}

func TestSummarizeCountsSumToTotal(t *testing.T) {
	outcomes := []SubmissionOutcome{
		{Category: OutcomeSuccess, Name: "A"},
		{Category: OutcomeDuplicate, Name: "B"},
		{Category: OutcomeValidation, Name: "C"},
		{Category: OutcomeOther, Name: "D"},
		{Category: OutcomeOther, Name: "E"},
		{Category: OutcomeSuccess, Name: "F", MissingCorporateNumber: true},
	}

	result := Summarize(outcomes)

	sum := result.SuccessCount + result.DuplicateCount + result.ValidationErrorCount + result.OtherErrorCount
	if sum != result.Total {
		t.Errorf("bucket sum = %d, want total %d", sum, result.Total)
	}
	if result.MissingCorporateNumber != 1 {
		t.Errorf("missing corporate number = %d, want 1", result.MissingCorporateNumber)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	result := Summarize(nil)
	if result.Total != 0 || result.SuccessCount != 0 {
		t.Errorf("empty summarize = %+v", result)
	}
}

// ----------------------------------------------------------------------------
// Sections Tests
// ----------------------------------------------------------------------------

func TestSections(t *testing.T) {
	result := Summarize([]SubmissionOutcome{
		{Category: OutcomeSuccess, Name: "Alpha"},
		{Category: OutcomeDuplicate, Name: "Beta", Message: "法人番号が既に登録されています"},
		{Category: OutcomeSuccess, Name: "Gamma"},
	})

	sections := result.Sections()

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %+v", len(sections), sections)
	}
	if sections[0].Title != "登録に成功した企業（2件）" {
		t.Errorf("success title = %q", sections[0].Title)
	}
	if sections[1].Title != "法人番号の重複で登録できなかった企業（1件）" {
		t.Errorf("duplicate title = %q", sections[1].Title)
	}
	if len(sections[1].Items) != 1 || sections[1].Items[0].Name != "Beta" {
		t.Errorf("duplicate items = %+v", sections[1].Items)
	}
}

func TestSectionsAllBuckets(t *testing.T) {
	result := Summarize([]SubmissionOutcome{
		{Category: OutcomeSuccess, Name: "A", MissingCorporateNumber: true},
		{Category: OutcomeDuplicate, Name: "B"},
		{Category: OutcomeValidation, Name: "C"},
		{Category: OutcomeOther, Name: "D"},
	})

	sections := result.Sections()
	if len(sections) != 5 {
		t.Fatalf("got %d sections, want 5", len(sections))
	}

	wantTitles := []string{
		"登録に成功した企業（1件）",
		"法人番号が未設定の企業（1件）",
		"法人番号の重複で登録できなかった企業（1件）",
		"入力内容の不備で登録できなかった企業（1件）",
		"その他のエラー（1件）",
	}
	for i, want := range wantTitles {
		if sections[i].Title != want {
			t.Errorf("section %d title = %q, want %q", i, sections[i].Title, want)
		}
	}
}

func TestSectionsSuccessOnly(t *testing.T) {
	result := Summarize([]SubmissionOutcome{
		{Category: OutcomeSuccess, Name: "A"},
	})

	sections := result.Sections()
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1 (failure sections omitted when empty)", len(sections))
	}
	if !strings.HasPrefix(sections[0].Title, "登録に成功した企業") {
		t.Errorf("title = %q", sections[0].Title)
	}
}
