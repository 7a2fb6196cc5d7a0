package probe

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Rule names reported in violations.
const (
	RuleTooMany          = "at_most_k"
	RuleDuplicate        = "no_duplicates"
	RuleWrongPart        = "opposite_part"
	RuleOrder            = "cooccurrence_first"
	RuleUnobserved       = "cooccurrence_observed"
	RuleCount            = "cooccurrence_count"
	RuleMissedPartner    = "cooccurrence_complete"
	RuleOutcome          = "outcome_ok"
	RuleSource           = "score_source"
	percentageMultiplier = 100
)
