package domain

// MatchedPair associates one local transaction with one external record for a
// single run. Pairs are derived per run and never persisted.
type MatchedPair struct {
	Local    Transaction
	External ExternalTransaction
}

// AmbiguousMatch records a local transaction that matched more than one
// external candidate under the heuristic rule. The engine never guesses which
// candidate is right; all involved records are excluded from both the matched
// and orphan sets for the run.
type AmbiguousMatch struct {
	Local      Transaction
	Candidates []ExternalTransaction
}

// MatchResult is the complete, disjoint partition of one run's input records.
// Every input record lands in exactly one of the four sets.
type MatchResult struct {
	Matches         []MatchedPair
	Ambiguous       []AmbiguousMatch
	OrphansLocal    []Transaction
	OrphansExternal []ExternalTransaction
}
