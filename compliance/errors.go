package compliance

import "fmt"

// MalformedRuleError reports a Rule that cannot be used: it is missing its
// location or attribute, the two required fields a rule must carry
// regardless of which relation (if any) it names.
type MalformedRuleError struct {
	Rule    Rule
	Message string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed rule %+v: %s", e.Rule, e.Message)
}

// ValidateRule checks the one invariant every Rule must satisfy regardless
// of relation or transferability: it must name both a location and an
// attribute, since those two fields are what key it into a Forest.
func ValidateRule(r Rule) error {
	if r.Location == "" {
		return &MalformedRuleError{Rule: r, Message: "location is empty"}
	}
	if r.Attribute == "" {
		return &MalformedRuleError{Rule: r, Message: "attribute is empty"}
	}
	return nil
}
