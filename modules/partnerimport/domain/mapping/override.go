package mapping

import (
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
)

// OverrideRuleEvaluator decides whether an incoming status may supersede an
// order whose status was manually corrected by staff. Blind re-import must
// not regress such corrections except for statuses the profile explicitly
// whitelists (a partner-confirmed cancellation, typically).
type OverrideRuleEvaluator struct {
	rules map[partnerorder.Status]bool
}

func NewOverrideRuleEvaluator(profile importprofile.ImportProfile) *OverrideRuleEvaluator {
	return &OverrideRuleEvaluator{rules: profile.StatusOverrideRules()}
}

// StatusApplies reports whether the candidate status may be written to the
// existing order. Orders without a manual override always accept the new
// status.
func (e *OverrideRuleEvaluator) StatusApplies(existing partnerorder.PartnerOrder, status partnerorder.Status) bool {
	if !existing.ManualStatusOverride() {
		return true
	}
	return e.rules[status]
}
