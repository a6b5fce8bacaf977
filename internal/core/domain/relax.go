package domain

// RelaxStatus classifies the outcome of one relaxation run.
type RelaxStatus string

const (
	// RelaxStatusExact means the original query already matched enough rows.
	RelaxStatusExact RelaxStatus = "exact"
	// RelaxStatusRelaxed means a widened query reached the match target.
	RelaxStatusRelaxed RelaxStatus = "relaxed"
	// RelaxStatusExhausted means no candidate dependency got there.
	RelaxStatusExhausted RelaxStatus = "exhausted"
)

// RelaxOptions tunes one relaxation run; zero values pick service defaults.
type RelaxOptions struct {
	// MinMatches is the row count a query must reach to be satisfied.
	MinMatches int `json:"min_matches,omitempty"`
	// MaxRounds caps how many candidate dependencies are attempted.
	MaxRounds int `json:"max_rounds,omitempty"`
}

// RelaxRound records one attempted dependency application.
type RelaxRound struct {
	RFD     string `json:"rfd"`
	Expr    string `json:"expr"`
	Matches int    `json:"matches"`
}

// RelaxResult is the outcome of a relaxation run: the untouched original
// query, the final (possibly widened) query, and the per-round trace.
type RelaxResult struct {
	Status     RelaxStatus  `json:"status"`
	Original   Query        `json:"original"`
	Relaxed    Query        `json:"relaxed"`
	Matches    int          `json:"matches"`
	Candidates int          `json:"candidates"`
	Rounds     []RelaxRound `json:"rounds,omitempty"`
}

// Satisfied reports whether the run ended with enough matching rows.
func (r RelaxResult) Satisfied() bool {
	return r.Status == RelaxStatusExact || r.Status == RelaxStatusRelaxed
}
