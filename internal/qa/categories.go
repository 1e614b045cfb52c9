package qa

// Category is one of the eight behavioral test dimensions a question can probe.
type Category string

const (
	CategoryRetrieval     Category = "retrieval"
	CategoryAccuracy      Category = "accuracy"
	CategoryCitation      Category = "citation"
	CategoryHallucination Category = "hallucination"
	CategoryOutOfScope    Category = "out_of_scope"
	CategoryNoAnswer      Category = "no_answer"
	CategoryConsistency   Category = "consistency"
	CategoryMultilingual  Category = "multilingual"
)

// AllCategories returns the categories in their canonical order. The order
// matters: quota rounding drift is absorbed by the last enabled category.
func AllCategories() []Category {
	return []Category{
		CategoryRetrieval,
		CategoryAccuracy,
		CategoryCitation,
		CategoryHallucination,
		CategoryOutOfScope,
		CategoryNoAnswer,
		CategoryConsistency,
		CategoryMultilingual,
	}
}

// DefaultDistribution maps each category to its default share (percent) of a
// run's question budget.
var DefaultDistribution = map[Category]int{
	CategoryRetrieval:     25,
	CategoryAccuracy:      20,
	CategoryCitation:      15,
	CategoryHallucination: 15,
	CategoryOutOfScope:    10,
	CategoryNoAnswer:      5,
	CategoryConsistency:   5,
	CategoryMultilingual:  5,
}

// ContentGrounded reports whether questions of this category are synthesized
// from sampled corpus passages. The remaining categories draw from fixed,
// topic-independent question banks.
func (c Category) ContentGrounded() bool {
	switch c {
	case CategoryRetrieval, CategoryAccuracy, CategoryCitation,
		CategoryHallucination, CategoryConsistency:
		return true
	}
	return false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := DefaultDistribution[c]
	return ok
}
