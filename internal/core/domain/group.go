package domain

// Confidence is the certainty tier of a duplicate match.
type Confidence string

// Confidence tiers. Only high and medium groups produce removals.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Emits reports whether a match at this tier is acted upon.
func (c Confidence) Emits() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium
}

// Method names the pass that produced a group.
type Method string

// Group methods.
const (
	MethodRuleStrict Method = "rule_strict"
	MethodRuleGraded Method = "rule_graded"
	MethodAI         Method = "ai"
)

// DuplicateGroup is one resolved duplicate cluster.
// Keep is nil for AI groups: the reasoning service only names the records to remove.
type DuplicateGroup struct {
	Keep       *EventRecord
	Remove     []EventRecord
	Method     Method
	Reason     string
	Confidence Confidence
	Day        string
}

// RemoveIDs returns the identifiers of the group's remove members.
func (g DuplicateGroup) RemoveIDs() []string {
	return IDs(g.Remove)
}
