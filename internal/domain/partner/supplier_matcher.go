package partner

import "strings"

// MatchOutcome classifies a supplier name lookup
type MatchOutcome string

const (
	MatchOutcomeMatched   MatchOutcome = "MATCHED"
	MatchOutcomeNoMatch   MatchOutcome = "NO_MATCH"
	MatchOutcomeAmbiguous MatchOutcome = "AMBIGUOUS"
)

// SupplierMatch is the result of resolving a parsed supplier name
type SupplierMatch struct {
	Outcome    MatchOutcome
	Supplier   *Supplier
	Candidates []Supplier
}

// MatchSupplier resolves a free-text supplier name (for example from a scanned
// document) against known suppliers. Comparison is case-insensitive on trimmed
// names; a supplier is a candidate when either name contains the other. A single
// exact match wins over substring candidates. Anything other than one candidate
// is left for a person to resolve.
func MatchSupplier(name string, suppliers []Supplier) SupplierMatch {
	needle := normalizeName(name)
	if needle == "" {
		return SupplierMatch{Outcome: MatchOutcomeNoMatch}
	}

	var exact, partial []Supplier
	for _, s := range suppliers {
		known := normalizeName(s.Name)
		if known == "" {
			continue
		}
		switch {
		case known == needle:
			exact = append(exact, s)
		case strings.Contains(known, needle) || strings.Contains(needle, known):
			partial = append(partial, s)
		}
	}

	switch {
	case len(exact) == 1:
		return SupplierMatch{Outcome: MatchOutcomeMatched, Supplier: &exact[0]}
	case len(exact) > 1:
		return SupplierMatch{Outcome: MatchOutcomeAmbiguous, Candidates: exact}
	case len(partial) == 1:
		return SupplierMatch{Outcome: MatchOutcomeMatched, Supplier: &partial[0]}
	case len(partial) > 1:
		return SupplierMatch{Outcome: MatchOutcomeAmbiguous, Candidates: partial}
	}
	return SupplierMatch{Outcome: MatchOutcomeNoMatch}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
