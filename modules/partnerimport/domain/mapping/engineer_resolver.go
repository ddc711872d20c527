package mapping

import (
	"strings"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
)

// EngineerResolver matches the partner's engineer hint against the
// profile's ordered mapping rules. Rule order is a user-visible contract:
// the list is scanned linearly and the first match wins, so the rules are
// never reordered into a lookup table.
type EngineerResolver struct {
	rules        []importprofile.EngineerRule
	engineerCol  string
	hasEngineers bool
}

func NewEngineerResolver(profile importprofile.ImportProfile) *EngineerResolver {
	col, ok := profile.ColumnMappings()[importprofile.FieldEngineer]
	return &EngineerResolver{
		rules:        profile.EngineerRules(),
		engineerCol:  col,
		hasEngineers: ok,
	}
}

// Resolve sets the candidate's EngineerID from the row's engineer hint.
// No hint or no matching rule leaves the field unset; that is expected for
// many rows and is not an error.
func (r *EngineerResolver) Resolve(c *CandidateRecord, row importsource.RawRow) {
	if !r.hasEngineers {
		return
	}
	hint, ok := row.Get(r.engineerCol)
	if !ok {
		return
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return
	}
	for _, rule := range r.rules {
		if strings.EqualFold(strings.TrimSpace(rule.PartnerIdentifier), hint) {
			id := rule.EngineerID
			c.EngineerID = &id
			return
		}
	}
}
