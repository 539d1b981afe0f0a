// Package core implements the company CSV import pipeline: parsing the
// fixed-schema CSV into rows, validating fields, converting rows into company
// payloads, submitting them one by one to the CRM backend with progress
// reporting, and categorizing the outcomes into the summary shown to the
// operator.
//
// The package has no HTTP dependencies. The web layer consumes it through
// Service, and the CRM backend is reached through the CompanyCreator
// interface.
package core
