package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
)

// ErrNoMatchingIdentifier is the row-level message for rows that cannot be
// matched against any order.
const ErrNoMatchingIdentifier = "no matching identifier"

var scheduledDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04",
}

// FieldMapper translates raw rows into candidate records using a profile's
// column mappings.
type FieldMapper struct {
	columns map[importprofile.TargetField]string
}

func NewFieldMapper(profile importprofile.ImportProfile) *FieldMapper {
	return &FieldMapper{columns: profile.ColumnMappings()}
}

// Map builds a CandidateRecord from the row. A source column named in the
// mappings but absent from the row leaves the target field unset and
// records a field issue; only the complete lack of a matching identifier
// excludes the row from reconciliation, and that is the caller's call to
// make via HasMatchingIdentifier.
func (m *FieldMapper) Map(row importsource.RawRow) CandidateRecord {
	c := CandidateRecord{RowIndex: row.Index}

	if v, ok := m.lookup(&c, row, importprofile.FieldPartnerExternalID); ok {
		c.PartnerExternalID = v
	}
	if v, ok := m.lookup(&c, row, importprofile.FieldOrderNumber); ok {
		c.OrderNumber = v
		c.hasOrderNumber = true
	}
	if v, ok := m.lookup(&c, row, importprofile.FieldClientName); ok {
		c.ClientName = v
		c.hasClientName = true
	}
	if v, ok := m.lookup(&c, row, importprofile.FieldClientPostcode); ok {
		c.ClientPostcode = v
		c.hasClientPostcode = true
	}
	if v, ok := m.lookup(&c, row, importprofile.FieldJobAddress); ok {
		c.JobAddress = v
		c.hasJobAddress = true
	}
	if v, ok := m.lookup(&c, row, importprofile.FieldStatus); ok {
		c.RawStatus = v
	}
	if v, ok := m.lookup(&c, row, importprofile.FieldScheduledDate); ok && v != "" {
		if d, err := parseScheduledDate(v); err == nil {
			c.ScheduledDate = &d
		} else {
			c.addIssue(string(importprofile.FieldScheduledDate), fmt.Sprintf("unparseable date: %s", v))
		}
	}
	return c
}

// lookup resolves a target field's source column against the row. Returns
// ok=false when the field has no mapping at all or the mapped column is
// missing from the source header.
func (m *FieldMapper) lookup(c *CandidateRecord, row importsource.RawRow, field importprofile.TargetField) (string, bool) {
	column, mapped := m.columns[field]
	if !mapped {
		return "", false
	}
	v, present := row.Get(column)
	if !present {
		c.addIssue(string(field), fmt.Sprintf("source column %q not in row", column))
		return "", false
	}
	return strings.TrimSpace(v), true
}

func parseScheduledDate(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range scheduledDateLayouts {
		d, err := time.Parse(layout, v)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
