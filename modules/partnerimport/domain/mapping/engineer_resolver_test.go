package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/mapping"
)

func TestEngineerResolver_FirstMatchingRuleWins(t *testing.T) {
	t.Parallel()

	resolver := mapping.NewEngineerResolver(testProfile(nil))

	// Both rules case-fold to a match for "smith" variants; rule order
	// decides, so "J. Smith" hits the first rule and "SMITH" the second.
	c := mapping.CandidateRecord{}
	resolver.Resolve(&c, testRow(1, map[string]string{"Installer": "j. smith"}))
	require.NotNil(t, c.EngineerID)
	assert.Equal(t, engineerOne, *c.EngineerID)

	c = mapping.CandidateRecord{}
	resolver.Resolve(&c, testRow(2, map[string]string{"Installer": "SMITH"}))
	require.NotNil(t, c.EngineerID)
	assert.Equal(t, engineerTwo, *c.EngineerID)
}

func TestEngineerResolver_NoMatchLeavesFieldUnset(t *testing.T) {
	t.Parallel()

	resolver := mapping.NewEngineerResolver(testProfile(nil))

	c := mapping.CandidateRecord{}
	resolver.Resolve(&c, testRow(1, map[string]string{"Installer": "Unknown Contractor"}))
	assert.Nil(t, c.EngineerID)
	assert.Empty(t, c.Issues)
}

func TestEngineerResolver_EmptyHintIsIgnored(t *testing.T) {
	t.Parallel()

	resolver := mapping.NewEngineerResolver(testProfile(nil))

	c := mapping.CandidateRecord{}
	resolver.Resolve(&c, testRow(1, map[string]string{"Installer": "   "}))
	assert.Nil(t, c.EngineerID)
}
