package generator

import (
	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// TotalQuestions computes the run's question budget from its configuration
// and the tenant's processed document count.
func TotalQuestions(cfg qa.RunConfig, documentCount int) int {
	return cfg.MinQuestions + documentCount*cfg.QuestionsPerDocument
}

// Quotas distributes total questions over the enabled categories using the
// default percentage table renormalized to the enabled subset. All arithmetic
// is integer: each category except the last gets floor(total*share/shareSum),
// and the last enabled category absorbs the remainder, so the quotas always
// sum to total exactly.
func Quotas(total int, enabled []qa.Category) map[qa.Category]int {
	quotas := make(map[qa.Category]int, len(enabled))
	if total <= 0 || len(enabled) == 0 {
		return quotas
	}

	// Keep canonical category order so the "last category" is deterministic
	// for any enabled subset.
	ordered := make([]qa.Category, 0, len(enabled))
	enabledSet := make(map[qa.Category]bool, len(enabled))
	for _, c := range enabled {
		enabledSet[c] = true
	}
	for _, c := range qa.AllCategories() {
		if enabledSet[c] {
			ordered = append(ordered, c)
		}
	}

	shareSum := 0
	for _, c := range ordered {
		shareSum += qa.DefaultDistribution[c]
	}

	assigned := 0
	for i, c := range ordered {
		if i == len(ordered)-1 {
			quotas[c] = total - assigned
			break
		}
		q := total * qa.DefaultDistribution[c] / shareSum
		quotas[c] = q
		assigned += q
	}
	return quotas
}
