package mapping_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/mapping"
)

func existingOrder() partnerorder.PartnerOrder {
	return partnerorder.Hydrate(
		uuid.New(),
		testPartnerID,
		"A-100",
		"ORD-7",
		"Alice Example",
		"SW1A 1AA",
		"1 Example Road",
		nil,
		partnerorder.StatusInstallBooked,
		false,
		nil,
		time.Now(),
		time.Now(),
	)
}

func TestBuildPatch_NoChangesYieldsEmptyPatch(t *testing.T) {
	t.Parallel()

	evaluator := mapping.NewOverrideRuleEvaluator(testProfile(nil))
	c := mapping.NewFieldMapper(testProfile(nil)).Map(testRow(1, map[string]string{
		"Job Ref":  "A-100",
		"Order No": "ORD-7",
		"Customer": "Alice Example",
		"Postcode": "SW1A 1AA",
		"Address":  "1 Example Road",
		"State":    "Booked",
	}))
	mapping.NewStatusTranslator(testProfile(nil)).Translate(&c)

	patch := mapping.BuildPatch(existingOrder(), c, evaluator)
	assert.True(t, patch.IsEmpty())
}

func TestBuildPatch_OnlyChangedFieldsParticipate(t *testing.T) {
	t.Parallel()

	evaluator := mapping.NewOverrideRuleEvaluator(testProfile(nil))
	c := mapping.NewFieldMapper(testProfile(nil)).Map(testRow(1, map[string]string{
		"Job Ref":      "A-100",
		"Order No":     "ORD-7",
		"Customer":     "Alice Example-Smith",
		"Postcode":     "SW1A 1AA",
		"Address":      "1 Example Road",
		"Install Date": "2026-09-20",
		"State":        "On Site",
	}))
	mapping.NewStatusTranslator(testProfile(nil)).Translate(&c)

	patch := mapping.BuildPatch(existingOrder(), c, evaluator)
	require.False(t, patch.IsEmpty())

	assert.Nil(t, patch.OrderNumber)
	assert.Nil(t, patch.ClientPostcode)
	assert.Nil(t, patch.JobAddress)

	require.NotNil(t, patch.ClientName)
	assert.Equal(t, "Alice Example-Smith", *patch.ClientName)
	require.NotNil(t, patch.ScheduledDate)
	require.NotNil(t, patch.Status)
	assert.Equal(t, partnerorder.StatusInProgress, *patch.Status)
}

func TestBuildPatch_ManualOverrideProtectsStatusOnly(t *testing.T) {
	t.Parallel()

	evaluator := mapping.NewOverrideRuleEvaluator(testProfile(nil))
	protected := existingOrder().WithManualStatusOverride(true)

	c := mapping.NewFieldMapper(testProfile(nil)).Map(testRow(1, map[string]string{
		"Job Ref":  "A-100",
		"Customer": "Renamed Client",
		"State":    "On Site",
	}))
	mapping.NewStatusTranslator(testProfile(nil)).Translate(&c)

	patch := mapping.BuildPatch(protected, c, evaluator)
	assert.Nil(t, patch.Status, "manual override blocks the status change")
	require.NotNil(t, patch.ClientName, "other fields still update")
	assert.Equal(t, "Renamed Client", *patch.ClientName)
}

func TestBuildPatch_OverrideRuleWhitelistsStatus(t *testing.T) {
	t.Parallel()

	profile := testProfile(map[partnerorder.Status]bool{
		partnerorder.StatusCancelled: true,
	})
	evaluator := mapping.NewOverrideRuleEvaluator(profile)
	protected := existingOrder().WithManualStatusOverride(true)

	c := mapping.NewFieldMapper(profile).Map(testRow(1, map[string]string{
		"Job Ref": "A-100",
		"State":   "Called Off",
	}))
	mapping.NewStatusTranslator(profile).Translate(&c)

	patch := mapping.BuildPatch(protected, c, evaluator)
	require.NotNil(t, patch.Status, "whitelisted status supersedes the manual override")
	assert.Equal(t, partnerorder.StatusCancelled, *patch.Status)
}

func TestBuildPatch_UnresolvedStatusNeverTouchesStatus(t *testing.T) {
	t.Parallel()

	evaluator := mapping.NewOverrideRuleEvaluator(testProfile(nil))
	c := mapping.NewFieldMapper(testProfile(nil)).Map(testRow(1, map[string]string{
		"Job Ref": "A-100",
		"State":   "Telephoned",
	}))
	mapping.NewStatusTranslator(testProfile(nil)).Translate(&c)

	patch := mapping.BuildPatch(existingOrder(), c, evaluator)
	assert.Nil(t, patch.Status)
}

func TestNewOrder_UsesResolvedStatusOrDefault(t *testing.T) {
	t.Parallel()

	profile := testProfile(nil)

	c := mapping.NewFieldMapper(profile).Map(testRow(1, map[string]string{
		"Job Ref": "A-200",
		"State":   "Done",
	}))
	mapping.NewStatusTranslator(profile).Translate(&c)
	order := mapping.NewOrder(profile, c)
	assert.Equal(t, partnerorder.StatusCompleted, order.Status())
	assert.Equal(t, "A-200", order.PartnerExternalID())
	assert.Equal(t, testPartnerID, order.PartnerID())

	c = mapping.NewFieldMapper(profile).Map(testRow(2, map[string]string{
		"Job Ref": "A-201",
	}))
	mapping.NewStatusTranslator(profile).Translate(&c)
	order = mapping.NewOrder(profile, c)
	assert.Equal(t, partnerorder.StatusAwaitingInstallBooking, order.Status())
}
