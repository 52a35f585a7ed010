package providers

import (
	"fmt"
	"strings"
)

// Family is the closed set of resolution strategies a provider belongs to.
// The family is declared on each registry entry and never inferred from the
// provider key at call time.
type Family string

// Provider families.
const (
	FamilyGeneric   Family = "generic"   // no known path to Wikidata
	FamilyWikidata  Family = "wikidata"  // the resolution hub itself
	FamilyGND       Family = "gnd"       // resolved through SPARQL on P227
	FamilyWikipedia Family = "wikipedia" // resolved through pageprops of one language edition
	FamilyMetagrid  Family = "metagrid"  // synced through the concordance service
)

// Families lists every known family in declaration order.
var Families = []Family{FamilyGeneric, FamilyWikidata, FamilyGND, FamilyWikipedia, FamilyMetagrid}

// String returns the string representation of a Family.
func (f Family) String() string {
	return string(f)
}

// IsValid reports whether f is one of the known families.
func (f Family) IsValid() bool {
	for _, known := range Families {
		if f == known {
			return true
		}
	}
	return false
}

// Resolvable reports whether identifiers of this family can be resolved to a
// Wikidata entity.
func (f Family) Resolvable() bool {
	switch f {
	case FamilyWikidata, FamilyGND, FamilyWikipedia:
		return true
	default:
		return false
	}
}

// ParseFamily parses a family name. An empty name is the generic family.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FamilyGeneric, nil
	}
	if !f.IsValid() {
		return "", fmt.Errorf("unknown provider family %q", s)
	}
	return f, nil
}
