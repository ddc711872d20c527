package mapping

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
)

// FieldIssue is a non-fatal problem with one field of a row: a missing
// source column, an unparseable date, an unmapped status. The row still
// proceeds; the field stays unset.
type FieldIssue struct {
	Field   string
	Message string
}

// CandidateRecord is the typed record produced from one raw row. Unset
// optional fields are zero; HasPartnerExternalID/HasOrderNumber distinguish
// "mapped to empty" from "not mapped".
type CandidateRecord struct {
	RowIndex int

	PartnerExternalID string
	OrderNumber       string
	ClientName        string
	ClientPostcode    string
	JobAddress        string
	ScheduledDate     *time.Time
	RawStatus         string

	ResolvedStatus partnerorder.Status
	StatusResolved bool

	EngineerID *uuid.UUID

	hasClientName     bool
	hasClientPostcode bool
	hasJobAddress     bool
	hasOrderNumber    bool

	Issues []FieldIssue
}

// HasMatchingIdentifier reports whether the row carries at least one of the
// two usable matching keys.
func (c CandidateRecord) HasMatchingIdentifier() bool {
	return c.PartnerExternalID != "" || c.OrderNumber != ""
}

func (c CandidateRecord) HasClientName() bool     { return c.hasClientName }
func (c CandidateRecord) HasClientPostcode() bool { return c.hasClientPostcode }
func (c CandidateRecord) HasJobAddress() bool     { return c.hasJobAddress }
func (c CandidateRecord) HasOrderNumber() bool    { return c.hasOrderNumber }

func (c *CandidateRecord) addIssue(field, message string) {
	c.Issues = append(c.Issues, FieldIssue{Field: field, Message: message})
}

// Action classifies what the reconciliation engine did with a row.
type Action string

const (
	ActionInserted Action = "inserted"
	ActionUpdated  Action = "updated"
	ActionSkipped  Action = "skipped"
	ActionError    Action = "error"
)

type RowOutcome struct {
	RowIndex int
	Action   Action
	Message  string
}

type RowError struct {
	RowIndex int    `json:"rowIndex"`
	Message  string `json:"message"`
}

// RunSummary aggregates per-row outcomes. Processed counts every row that
// reached reconciliation, including rows that then failed at a lookup or a
// write; rows dropped earlier (parse errors, no usable identifier) go into
// Errors without counting. Warnings counts rows whose status text had no
// mapping (informational, not errors).
type RunSummary struct {
	Processed int        `json:"processed"`
	Inserted  int        `json:"insertedCount"`
	Updated   int        `json:"updatedCount"`
	Skipped   int        `json:"skippedCount"`
	Warnings  int        `json:"warningCount"`
	Errors    []RowError `json:"errors"`
}

// Add folds one reconciliation outcome into the summary. By the time a row
// has an outcome it reached reconciliation, so every outcome counts as
// processed, errors included.
func (s *RunSummary) Add(outcome RowOutcome) {
	s.Processed++
	switch outcome.Action {
	case ActionInserted:
		s.Inserted++
	case ActionUpdated:
		s.Updated++
	case ActionSkipped:
		s.Skipped++
	case ActionError:
		s.Errors = append(s.Errors, RowError{RowIndex: outcome.RowIndex, Message: outcome.Message})
	}
}

// AddRowError records a row dropped before reconciliation. It never touches
// Processed.
func (s *RunSummary) AddRowError(rowIndex int, message string) {
	s.Errors = append(s.Errors, RowError{RowIndex: rowIndex, Message: message})
}
