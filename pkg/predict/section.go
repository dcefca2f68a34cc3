// Package predict issues structured-extraction requests against the staged
// takeout payload, one per semantic section, and checks the model's output
// against each section's schema contract.
package predict

// Section is one of the three independent prediction categories. The set is
// closed: adding a fourth section means code changes across instructions,
// validation and persistence, which is a deliberate simplification.
type Section string

const (
	SectionTransportation Section = "transportation"
	SectionLifestyle      Section = "lifestyle"
	SectionCategories     Section = "categories"
)

// Sections lists every section in dispatch order. Dispatches run
// concurrently, so the order only affects logs.
var Sections = []Section{SectionTransportation, SectionLifestyle, SectionCategories}

func (s Section) String() string { return string(s) }
