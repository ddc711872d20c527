package models

import (
	"database/sql"
	"time"
)

type ImportProfile struct {
	ID                  string
	PartnerID           string
	Name                string
	SourceType          string
	SpreadsheetID       sql.NullString
	SheetName           sql.NullString
	ColumnMappings      []byte
	StatusMappings      []byte
	EngineerRules       []byte
	StatusOverrideRules []byte
	DefaultInsertStatus string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type PartnerOrder struct {
	ID                   string
	PartnerID            string
	PartnerExternalID    string
	OrderNumber          sql.NullString
	ClientName           sql.NullString
	ClientPostcode       sql.NullString
	JobAddress           sql.NullString
	ScheduledDate        sql.NullTime
	Status               string
	ManualStatusOverride bool
	EngineerID           sql.NullString
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type ImportRun struct {
	ID         string
	ProfileID  string
	PartnerID  string
	DryRun     bool
	Processed  int
	Inserted   int
	Updated    int
	Skipped    int
	Warnings   int
	Errors     []byte
	StartedAt  time.Time
	FinishedAt time.Time
}
