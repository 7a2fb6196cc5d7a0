package probe

import (
	"fmt"

	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/internal/domain/types"
)

// Verify checks one response against the corpus truth and returns every
// rule it breaks. k is the number of results that was requested.
func Verify(q Query, k int, resp types.RecommendationResponse, exp *Expectations) []Violation {
	var out []Violation
	fail := func(rule, format string, args ...any) {
		out = append(out, Violation{Query: q, Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	if resp.Outcome != types.OutcomeOK {
		fail(RuleOutcome, "outcome %q", resp.Outcome)
		return out
	}
	recs := resp.Recommendations
	if len(recs) > k {
		fail(RuleTooMany, "%d results for k=%d", len(recs), k)
	}

	want := q.Item.Part.Opposite()
	seen := make(map[model.Key]struct{}, len(recs))
	fallbackSeen := false
	cooc := 0
	for i, r := range recs {
		if _, dup := seen[r.Key()]; dup {
			fail(RuleDuplicate, "position %d repeats %v", i, r.Key())
		}
		seen[r.Key()] = struct{}{}

		if r.Part != want {
			fail(RuleWrongPart, "position %d is %q, want %q", i, r.Part, want)
		}

		switch r.ScoreSource {
		case model.SourceCooccurrence:
			cooc++
			if fallbackSeen {
				fail(RuleOrder, "co-occurrence result at %d after a fallback result", i)
			}
		case model.SourceNaiveBayes:
			fallbackSeen = true
		default:
			fail(RuleSource, "position %d has source %q", i, r.ScoreSource)
		}
	}

	partners := exp.Partners(q)
	counts := make(map[model.Key]int, len(partners))
	for _, p := range partners {
		counts[p.Key] = p.Count
	}
	for i, r := range recs {
		if r.ScoreSource != model.SourceCooccurrence {
			continue
		}
		n, ok := counts[r.Key()]
		if !ok {
			fail(RuleUnobserved, "position %d %v was never worn with the query", i, r.Key())
			continue
		}
		if r.Score != float64(n) {
			fail(RuleCount, "position %d scored %v, corpus count %d", i, r.Score, n)
		}
	}

	// The whole co-occurrence list fits, or it fills all k slots.
	if expected := min(len(partners), k); cooc < expected {
		fail(RuleMissedPartner, "%d co-occurrence results, want %d", cooc, expected)
	}
	return out
}
