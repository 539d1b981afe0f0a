package core

// importer.go drives batch submission to the CRM backend.
//
// Companies are submitted strictly one at a time, in input order. One
// company's failure never aborts the batch: every payload is attempted and
// classified, and the progress callback fires exactly once per completed
// item. A panic anywhere in the loop is fatal to the whole import and is
// reported as a plain error, without a partial outcome list.

import (
	"context"
	"fmt"
	"math"
)

// CreatedCompany is the backend's acknowledgment of a created company.
// CorporateNumber may be empty when the backend could not resolve one.
type CreatedCompany struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CorporateNumber string `json:"corporate_number"`
}

// CompanyCreator is the single-operation contract of the CRM backend's
// company create endpoint.
type CompanyCreator interface {
	CreateCompany(ctx context.Context, payload CompanyPayload) (CreatedCompany, error)
}

// SubmissionOutcome records how the submission of one company ended.
type SubmissionOutcome struct {
	Category OutcomeCategory `json:"category"`
	Name     string          `json:"name"`
	Message  string          `json:"message,omitempty"`

	// MissingCorporateNumber is set on successes whose created record has no
	// corporate number. Informational, not a failure.
	MissingCorporateNumber bool `json:"missingCorporateNumber,omitempty"`
}

// ProgressFunc receives the running completion percentage after each item.
type ProgressFunc func(percent int)

// Importer submits company payloads to the CRM backend.
type Importer struct {
	client CompanyCreator
}

// NewImporter creates an Importer backed by the given client.
func NewImporter(client CompanyCreator) *Importer {
	return &Importer{client: client}
}

// ImportAll submits every payload sequentially and returns one outcome per
// payload, in input order. onProgress (optional) is invoked exactly once per
// completed item with round(completed/total*100); the final call is exactly
// 100. The returned error is non-nil only for a fatal pipeline failure, in
// which case outcomes is nil.
func (im *Importer) ImportAll(ctx context.Context, payloads []CompanyPayload, onProgress ProgressFunc) (outcomes []SubmissionOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcomes = nil
			err = fmt.Errorf("import aborted: %v", r)
		}
	}()

	total := len(payloads)
	outcomes = make([]SubmissionOutcome, 0, total)

	for i, payload := range payloads {
		outcomes = append(outcomes, im.submitOne(ctx, payload))

		if onProgress != nil {
			onProgress(percentDone(i+1, total))
		}
	}

	return outcomes, nil
}

// submitOne submits a single company and classifies the result.
func (im *Importer) submitOne(ctx context.Context, payload CompanyPayload) SubmissionOutcome {
	created, err := im.client.CreateCompany(ctx, payload)
	if err != nil {
		category, message := ClassifyError(err)
		return SubmissionOutcome{
			Category: category,
			Name:     payload.Name,
			Message:  message,
		}
	}

	return SubmissionOutcome{
		Category:               OutcomeSuccess,
		Name:                   payload.Name,
		MissingCorporateNumber: created.CorporateNumber == "",
	}
}

func percentDone(completed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
