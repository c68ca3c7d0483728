package submission

import "fmt"

type Rule int

const (
	RuleEmptySelection Rule = iota + 1
	RuleMissingOutcome
	RuleMissingNextDate
	RuleMissingAttachment
)

// ValidationError names the first failed rule and how many records broke it.
type ValidationError struct {
	Rule  Rule
	Count int
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleEmptySelection:
		return "please select at least one item to submit"
	case RuleMissingOutcome:
		return fmt.Sprintf("please select a status for all selected items. %d item(s) are missing status", e.Count)
	case RuleMissingNextDate:
		return fmt.Sprintf("please select a next target date for all items with %q status. %d item(s) are missing target date", OutcomeExtend, e.Count)
	case RuleMissingAttachment:
		return fmt.Sprintf("please upload images for all required attachments. %d item(s) are missing required images", e.Count)
	}
	return fmt.Sprintf("invalid submission (rule %d, %d item(s))", e.Rule, e.Count)
}

// Validate checks the selection against sources, first failing rule wins.
func Validate(s State, sources map[string]Source) error {
	ids := s.Selected()
	if len(ids) == 0 {
		return &ValidationError{Rule: RuleEmptySelection}
	}

	checks := []struct {
		rule Rule
		bad  func(id string, e Entry) bool
	}{
		{RuleMissingOutcome, func(_ string, e Entry) bool { return !e.Outcome.Valid() }},
		{RuleMissingNextDate, func(_ string, e Entry) bool { return e.Outcome == OutcomeExtend && e.NextDate.IsZero() }},
		{RuleMissingAttachment, func(id string, e Entry) bool {
			return sources[id].RequireAttachment && !e.Attachment.present()
		}},
	}

	for _, c := range checks {
		n := 0
		for _, id := range ids {
			e, _ := s.Entry(id)
			if c.bad(id, e) {
				n++
			}
		}
		if n > 0 {
			return &ValidationError{Rule: c.rule, Count: n}
		}
	}
	return nil
}
