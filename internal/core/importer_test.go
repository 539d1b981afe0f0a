package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeCreator scripts per-call results for the CRM client.
type fakeCreator struct {
	calls   int
	results []fakeResult
	panicAt int // 1-based call number to panic on, 0 disables
}

type fakeResult struct {
	created CreatedCompany
	err     error
}

func (f *fakeCreator) CreateCompany(_ context.Context, payload CompanyPayload) (CreatedCompany, error) {
	f.calls++
	if f.panicAt > 0 && f.calls == f.panicAt {
		panic("scripted failure")
	}
	if f.calls <= len(f.results) {
		r := f.results[f.calls-1]
		if r.err != nil {
			return CreatedCompany{}, r.err
		}
		created := r.created
		if created.Name == "" {
			created.Name = payload.Name
		}
		return created, nil
	}
	return CreatedCompany{ID: fmt.Sprintf("id-%d", f.calls), Name: payload.Name, CorporateNumber: "1234567890123"}, nil
}

func payloads(n int) []CompanyPayload {
	ps := make([]CompanyPayload, n)
	for i := range ps {
		ps[i] = CompanyPayload{Name: fmt.Sprintf("Company %d", i+1), Status: "lead"}
	}
	return ps
}

// ----------------------------------------------------------------------------
// ImportAll Tests
// ----------------------------------------------------------------------------

func TestImportAllProgress(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []int
	}{
		{name: "three items", n: 3, want: []int{33, 67, 100}},
		{name: "one item", n: 1, want: []int{100}},
		{name: "four items", n: 4, want: []int{25, 50, 75, 100}},
		{name: "seven items", n: 7, want: []int{14, 29, 43, 57, 71, 86, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeCreator{}
			var got []int

			outcomes, err := NewImporter(client).ImportAll(context.Background(), payloads(tt.n), func(p int) {
				got = append(got, p)
			})
			if err != nil {
				t.Fatalf("ImportAll() error = %v", err)
			}
			if len(outcomes) != tt.n {
				t.Fatalf("got %d outcomes, want %d", len(outcomes), tt.n)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("onProgress called %d times, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("progress[%d] = %d, want %d", i, got[i], tt.want[i])
				}
				if i > 0 && got[i] < got[i-1] {
					t.Errorf("progress decreased: %v", got)
				}
			}
			if got[len(got)-1] != 100 {
				t.Errorf("final progress = %d, want 100", got[len(got)-1])
			}
		})
	}
}

func TestImportAllPartialFailure(t *testing.T) {
	client := &fakeCreator{
		results: []fakeResult{
			{created: CreatedCompany{ID: "1", CorporateNumber: "111"}},
			{err: &APIError{Category: OutcomeDuplicate, StatusCode: 409}},
			{created: CreatedCompany{ID: "3", CorporateNumber: "333"}},
		},
	}

	outcomes, err := NewImporter(client).ImportAll(context.Background(), payloads(3), nil)
	if err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	if client.calls != 3 {
		t.Errorf("client called %d times, want 3 (failure must not abort the batch)", client.calls)
	}
	if outcomes[0].Category != OutcomeSuccess {
		t.Errorf("outcome 0 = %q, want success", outcomes[0].Category)
	}
	if outcomes[1].Category != OutcomeDuplicate {
		t.Errorf("outcome 1 = %q, want duplicate", outcomes[1].Category)
	}
	if outcomes[1].Name != "Company 2" {
		t.Errorf("outcome 1 name = %q, want %q", outcomes[1].Name, "Company 2")
	}
	if outcomes[1].Message != "法人番号が既に登録されています" {
		t.Errorf("outcome 1 message = %q", outcomes[1].Message)
	}
	if outcomes[2].Category != OutcomeSuccess {
		t.Errorf("outcome 2 = %q, want success", outcomes[2].Category)
	}
}

func TestImportAllErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCat     OutcomeCategory
		wantMessage string
	}{
		{
			name:        "duplicate signal",
			err:         &APIError{Category: OutcomeDuplicate, StatusCode: 409, Message: "法人番号 1234567890123 は登録済みです"},
			wantCat:     OutcomeDuplicate,
			wantMessage: "法人番号 1234567890123 は登録済みです",
		},
		{
			name:        "validation rejection",
			err:         &APIError{Category: OutcomeValidation, StatusCode: 422},
			wantCat:     OutcomeValidation,
			wantMessage: "入力内容に不備があります",
		},
		{
			name:        "server error",
			err:         &APIError{Category: OutcomeOther, StatusCode: 500},
			wantCat:     OutcomeOther,
			wantMessage: "エラーが発生しました",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:9999: connect: connection refused"),
			wantCat:     OutcomeOther,
			wantMessage: "サーバーに接続できませんでした",
		},
		{
			name:        "timeout",
			err:         errors.New("context deadline exceeded"),
			wantCat:     OutcomeOther,
			wantMessage: "リクエストがタイムアウトしました",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeCreator{results: []fakeResult{{err: tt.err}}}

			outcomes, err := NewImporter(client).ImportAll(context.Background(), payloads(1), nil)
			if err != nil {
				t.Fatalf("ImportAll() error = %v", err)
			}
			if outcomes[0].Category != tt.wantCat {
				t.Errorf("category = %q, want %q", outcomes[0].Category, tt.wantCat)
			}
			if outcomes[0].Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", outcomes[0].Message, tt.wantMessage)
			}
		})
	}
}

func TestImportAllMissingCorporateNumber(t *testing.T) {
	client := &fakeCreator{
		results: []fakeResult{
			{created: CreatedCompany{ID: "1", CorporateNumber: "1234567890123"}},
			{created: CreatedCompany{ID: "2"}},
		},
	}

	outcomes, err := NewImporter(client).ImportAll(context.Background(), payloads(2), nil)
	if err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	if outcomes[0].MissingCorporateNumber {
		t.Error("outcome 0 should have a corporate number")
	}
	if !outcomes[1].MissingCorporateNumber {
		t.Error("outcome 1 should be flagged as missing a corporate number")
	}
}

func TestImportAllPanicIsFatal(t *testing.T) {
	client := &fakeCreator{panicAt: 2}

	outcomes, err := NewImporter(client).ImportAll(context.Background(), payloads(3), nil)
	if err == nil {
		t.Fatal("ImportAll() should return an error when the pipeline panics")
	}
	if outcomes != nil {
		t.Errorf("outcomes = %v, want nil on fatal failure", outcomes)
	}
}

func TestImportAllEmptyBatch(t *testing.T) {
	client := &fakeCreator{}
	called := 0

	outcomes, err := NewImporter(client).ImportAll(context.Background(), nil, func(int) { called++ })
	if err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes, want 0", len(outcomes))
	}
	if called != 0 {
		t.Errorf("onProgress called %d times for an empty batch", called)
	}
}
