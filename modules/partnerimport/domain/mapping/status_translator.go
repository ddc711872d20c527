package mapping

import (
	"fmt"
	"strings"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
)

// StatusTranslator maps partner free-text statuses onto the internal
// enhanced status enum. Matching is exact-string after trimming and
// case-folding; there is no fuzzy matching.
type StatusTranslator struct {
	byNormalized map[string]partnerorder.Status
}

func NewStatusTranslator(profile importprofile.ImportProfile) *StatusTranslator {
	m := make(map[string]partnerorder.Status, len(profile.StatusMappings()))
	for raw, status := range profile.StatusMappings() {
		m[normalizeStatus(raw)] = status
	}
	return &StatusTranslator{byNormalized: m}
}

// Translate resolves the candidate's raw status in place. A miss leaves
// ResolvedStatus unset and records an "unmapped status" field issue; the
// row still reconciles.
func (t *StatusTranslator) Translate(c *CandidateRecord) {
	if strings.TrimSpace(c.RawStatus) == "" {
		return
	}
	status, ok := t.byNormalized[normalizeStatus(c.RawStatus)]
	if !ok {
		c.addIssue(string(importprofile.FieldStatus), fmt.Sprintf("unmapped status: %s", c.RawStatus))
		return
	}
	c.ResolvedStatus = status
	c.StatusResolved = true
}

// HasUnmappedStatus reports whether the candidate carried a status text
// that failed to translate. Such rows are tallied as warnings, not errors.
func (c CandidateRecord) HasUnmappedStatus() bool {
	return strings.TrimSpace(c.RawStatus) != "" && !c.StatusResolved
}

func normalizeStatus(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
