package mapping

import (
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
)

// BuildPatch computes the update for an existing order from a candidate
// record. Only successfully mapped fields participate; fields equal to the
// existing value are left out so a no-change row yields an empty patch. The
// status field additionally passes through the override rule evaluator.
func BuildPatch(existing partnerorder.PartnerOrder, c CandidateRecord, overrides *OverrideRuleEvaluator) partnerorder.Patch {
	var p partnerorder.Patch

	if c.HasOrderNumber() && c.OrderNumber != existing.OrderNumber() {
		v := c.OrderNumber
		p.OrderNumber = &v
	}
	if c.HasClientName() && c.ClientName != existing.ClientName() {
		v := c.ClientName
		p.ClientName = &v
	}
	if c.HasClientPostcode() && c.ClientPostcode != existing.ClientPostcode() {
		v := c.ClientPostcode
		p.ClientPostcode = &v
	}
	if c.HasJobAddress() && c.JobAddress != existing.JobAddress() {
		v := c.JobAddress
		p.JobAddress = &v
	}
	if c.ScheduledDate != nil {
		if existing.ScheduledDate() == nil || !existing.ScheduledDate().Equal(*c.ScheduledDate) {
			d := *c.ScheduledDate
			p.ScheduledDate = &d
		}
	}
	if c.EngineerID != nil {
		if existing.EngineerID() == nil || *existing.EngineerID() != *c.EngineerID {
			id := *c.EngineerID
			p.EngineerID = &id
		}
	}
	if c.StatusResolved && c.ResolvedStatus != existing.Status() &&
		overrides.StatusApplies(existing, c.ResolvedStatus) {
		s := c.ResolvedStatus
		p.Status = &s
	}
	return p
}

// NewOrder constructs the order to insert for a candidate with no existing
// match. An unresolved status falls back to the profile's default insert
// status; nothing beyond profile-declared defaults is invented.
func NewOrder(profile importprofile.ImportProfile, c CandidateRecord) partnerorder.PartnerOrder {
	status := profile.DefaultInsertStatus()
	if c.StatusResolved {
		status = c.ResolvedStatus
	}

	order := partnerorder.New(profile.PartnerID(), c.PartnerExternalID, status)
	if c.HasOrderNumber() {
		order = order.WithOrderNumber(c.OrderNumber)
	}
	if c.HasClientName() {
		order = order.WithClientName(c.ClientName)
	}
	if c.HasClientPostcode() {
		order = order.WithClientPostcode(c.ClientPostcode)
	}
	if c.HasJobAddress() {
		order = order.WithJobAddress(c.JobAddress)
	}
	if c.ScheduledDate != nil {
		d := *c.ScheduledDate
		order = order.WithScheduledDate(&d)
	}
	if c.EngineerID != nil {
		id := *c.EngineerID
		order = order.WithEngineerID(&id)
	}
	return order
}
