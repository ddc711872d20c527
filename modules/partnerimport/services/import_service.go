package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importrun"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/mapping"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/sheets"
	"github.com/fieldops-hq/fieldops/pkg/composables"
	"github.com/fieldops-hq/fieldops/pkg/eventbus"
)

// ConfigError is fatal for a whole run: it fires before any row is
// processed, so no orders are touched and no partial summary exists.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "import configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

var (
	ErrProfileInactive = errors.New("import profile is inactive")
	ErrMissingCSVData  = errors.New("csv data is required for a csv-source profile")
	ErrMissingXLSXData = errors.New("workbook data is required for an xlsx-source profile")
	ErrNoSheetsClient  = errors.New("no spreadsheet client configured")
)

// RunRequest triggers one import run. Exactly one of CSVData/XLSXData is
// set for upload-backed profiles; spreadsheet-backed profiles carry neither.
type RunRequest struct {
	ProfileID           uuid.UUID
	DryRun              bool
	CreateMissingOrders bool
	CSVData             string
	XLSXData            []byte
}

// ImportRunCompletedEvent is published on the event bus after every run,
// dry or applied.
type ImportRunCompletedEvent struct {
	ProfileID  uuid.UUID
	PartnerID  uuid.UUID
	DryRun     bool
	Summary    mapping.RunSummary
	FinishedAt time.Time
}

type ImportServiceConfig struct {
	Profiles importprofile.Repository
	Orders   partnerorder.Repository
	Runs     importrun.Repository
	// Sheets may be nil when no spreadsheet-backed profiles exist.
	Sheets   sheets.Fetcher
	EventBus eventbus.EventBus
	// Workers bounds the pure per-row mapping stage. Zero means 4.
	Workers int
}

type ImportService struct {
	profiles importprofile.Repository
	orders   partnerorder.Repository
	runs     importrun.Repository
	sheets   sheets.Fetcher
	bus      eventbus.EventBus
	workers  int
}

func NewImportService(cfg ImportServiceConfig) *ImportService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &ImportService{
		profiles: cfg.Profiles,
		orders:   cfg.Orders,
		runs:     cfg.Runs,
		sheets:   cfg.Sheets,
		bus:      cfg.EventBus,
		workers:  workers,
	}
}

// Run executes one import synchronously and returns the only summary the
// caller will see. Once row processing starts the run always completes:
// per-row failures are folded into the summary, never propagated.
func (s *ImportService) Run(ctx context.Context, req RunRequest) (mapping.RunSummary, error) {
	started := time.Now()

	profile, err := s.profiles.GetByID(ctx, req.ProfileID)
	if err != nil {
		if errors.Is(err, importprofile.ErrNotFound) {
			return mapping.RunSummary{}, err
		}
		return mapping.RunSummary{}, &ConfigError{Err: err}
	}
	if !profile.IsActive() {
		return mapping.RunSummary{}, &ConfigError{Err: ErrProfileInactive}
	}

	reader, err := s.readerFor(profile, req)
	if err != nil {
		return mapping.RunSummary{}, &ConfigError{Err: err}
	}

	rows, parseErrs, err := reader.Read(ctx)
	if err != nil {
		return mapping.RunSummary{}, &ConfigError{Err: err}
	}

	summary := mapping.RunSummary{Errors: []mapping.RowError{}}
	for _, pe := range parseErrs {
		summary.AddRowError(pe.RowIndex, pe.Message)
	}

	log := s.logger(ctx).WithFields(logrus.Fields{
		"profile_id": profile.ID(),
		"partner_id": profile.PartnerID(),
		"dry_run":    req.DryRun,
	})
	log.WithField("rows", len(rows)).Info("import run started")

	candidates := s.mapRows(ctx, profile, rows)

	evaluator := mapping.NewOverrideRuleEvaluator(profile)
	dryInserted := make(map[string]bool)
	for _, c := range candidates {
		if !c.HasMatchingIdentifier() {
			summary.AddRowError(c.RowIndex, mapping.ErrNoMatchingIdentifier)
			log.WithField("row", c.RowIndex).Warn(mapping.ErrNoMatchingIdentifier)
			continue
		}
		if c.HasUnmappedStatus() {
			summary.Warnings++
			log.WithField("row", c.RowIndex).Warnf("unmapped status: %s", c.RawStatus)
		}
		outcome := s.reconcileRow(ctx, profile, evaluator, c, req, dryInserted)
		if outcome.Action == mapping.ActionError {
			log.WithField("row", outcome.RowIndex).Warn(outcome.Message)
		}
		summary.Add(outcome)
	}

	finished := time.Now()
	if !req.DryRun && s.runs != nil {
		if _, err := s.runs.Create(ctx, importrun.ImportRun{
			ProfileID:  profile.ID(),
			PartnerID:  profile.PartnerID(),
			DryRun:     req.DryRun,
			Summary:    summary,
			StartedAt:  started,
			FinishedAt: finished,
		}); err != nil {
			log.WithError(err).Error("failed to record import run")
		}
	}

	if s.bus != nil {
		s.bus.Publish(&ImportRunCompletedEvent{
			ProfileID:  profile.ID(),
			PartnerID:  profile.PartnerID(),
			DryRun:     req.DryRun,
			Summary:    summary,
			FinishedAt: finished,
		})
	}

	log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"inserted":  summary.Inserted,
		"updated":   summary.Updated,
		"skipped":   summary.Skipped,
		"errors":    len(summary.Errors),
	}).Info("import run completed")

	return summary, nil
}

func (s *ImportService) readerFor(profile importprofile.ImportProfile, req RunRequest) (importsource.Reader, error) {
	switch profile.SourceType() {
	case importprofile.SourceCSV:
		if req.CSVData == "" {
			return nil, ErrMissingCSVData
		}
		return importsource.NewCSVReader(req.CSVData), nil
	case importprofile.SourceXLSX:
		if len(req.XLSXData) == 0 {
			return nil, ErrMissingXLSXData
		}
		var sheetName string
		if ref := profile.SpreadsheetRef(); ref != nil {
			sheetName = ref.SheetName
		}
		return importsource.NewXLSXReader(req.XLSXData, sheetName), nil
	case importprofile.SourceSpreadsheet:
		if s.sheets == nil {
			return nil, ErrNoSheetsClient
		}
		ref := profile.SpreadsheetRef()
		return sheets.NewReader(s.sheets, ref.SpreadsheetID, ref.SheetName), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", profile.SourceType())
	}
}

// mapRows runs the pure per-row stages (field mapping, status translation,
// engineer resolution) across a bounded worker pool. Results come back in
// row order; the stage has no side effects and no per-row failure mode.
func (s *ImportService) mapRows(ctx context.Context, profile importprofile.ImportProfile, rows []importsource.RawRow) []mapping.CandidateRecord {
	mapper := mapping.NewFieldMapper(profile)
	translator := mapping.NewStatusTranslator(profile)
	resolver := mapping.NewEngineerResolver(profile)

	candidates := make([]mapping.CandidateRecord, len(rows))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range rows {
		g.Go(func() error {
			c := mapper.Map(row)
			translator.Translate(&c)
			resolver.Resolve(&c, row)
			candidates[i] = c
			return nil
		})
	}
	_ = g.Wait()
	return candidates
}

// reconcileRow matches first, then decides: find the existing order by partner
// identity, patch it under the override rules, or create it. The caller has
// already dropped rows without a usable identifier. Dry-run goes through the
// identical decision path and differs only in never writing; dryInserted
// stands in for the writes so duplicate keys in one file classify the same
// way they would in apply mode.
func (s *ImportService) reconcileRow(
	ctx context.Context,
	profile importprofile.ImportProfile,
	evaluator *mapping.OverrideRuleEvaluator,
	c mapping.CandidateRecord,
	req RunRequest,
	dryInserted map[string]bool,
) mapping.RowOutcome {
	existing, found, err := s.findExisting(ctx, profile.PartnerID(), c)
	if err != nil {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionError, Message: err.Error()}
	}

	if !found && req.DryRun && dryInserted[c.PartnerExternalID] {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionSkipped, Message: "duplicate in this run"}
	}

	if found {
		return s.updateExisting(ctx, evaluator, existing, c, req.DryRun)
	}

	if !req.CreateMissingOrders {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionSkipped, Message: "no matching order and creation disabled"}
	}
	if c.PartnerExternalID == "" {
		// An order number alone cannot satisfy the unique partner key.
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionSkipped, Message: "cannot create order without partner external id"}
	}

	if req.DryRun {
		dryInserted[c.PartnerExternalID] = true
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionInserted}
	}

	order := mapping.NewOrder(profile, c)
	_, inserted, err := s.orders.Insert(ctx, order)
	if err != nil {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionError, Message: err.Error()}
	}
	if !inserted {
		// Lost the insert race (duplicate row or concurrent run): the key
		// now exists, degrade to an update against the winner's row.
		existing, err := s.orders.GetByPartnerKey(ctx, profile.PartnerID(), c.PartnerExternalID)
		if err != nil {
			return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionError, Message: err.Error()}
		}
		return s.updateExisting(ctx, evaluator, existing, c, req.DryRun)
	}
	return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionInserted}
}

func (s *ImportService) findExisting(ctx context.Context, partnerID uuid.UUID, c mapping.CandidateRecord) (partnerorder.PartnerOrder, bool, error) {
	if c.PartnerExternalID != "" {
		order, err := s.orders.GetByPartnerKey(ctx, partnerID, c.PartnerExternalID)
		if err == nil {
			return order, true, nil
		}
		if !errors.Is(err, partnerorder.ErrNotFound) {
			return partnerorder.PartnerOrder{}, false, err
		}
	}
	if c.OrderNumber != "" {
		order, err := s.orders.GetByOrderNumber(ctx, partnerID, c.OrderNumber)
		if err == nil {
			return order, true, nil
		}
		if !errors.Is(err, partnerorder.ErrNotFound) {
			return partnerorder.PartnerOrder{}, false, err
		}
	}
	return partnerorder.PartnerOrder{}, false, nil
}

func (s *ImportService) updateExisting(
	ctx context.Context,
	evaluator *mapping.OverrideRuleEvaluator,
	existing partnerorder.PartnerOrder,
	c mapping.CandidateRecord,
	dryRun bool,
) mapping.RowOutcome {
	patch := mapping.BuildPatch(existing, c, evaluator)
	if patch.IsEmpty() {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionSkipped, Message: "no changes"}
	}
	if dryRun {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionUpdated}
	}
	if _, err := s.orders.Update(ctx, existing.ID(), patch); err != nil {
		return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionError, Message: err.Error()}
	}
	return mapping.RowOutcome{RowIndex: c.RowIndex, Action: mapping.ActionUpdated}
}

func (s *ImportService) logger(ctx context.Context) *logrus.Entry {
	if entry, ok := composables.TryUseLogger(ctx); ok {
		return entry
	}
	fallback := logrus.New()
	fallback.SetLevel(logrus.ErrorLevel)
	return logrus.NewEntry(fallback)
}
