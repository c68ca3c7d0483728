package submission

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetdesk/internal/dates"
)

func TestReduce_SelectDefaultsToDone(t *testing.T) {
	s := Reduce(State{}, Select{ID: "a"}, Select{ID: "b"}, Select{ID: "a"})

	assert.Equal(t, []string{"a", "b"}, s.Selected())
	e, ok := s.Entry("a")
	require.True(t, ok)
	assert.Equal(t, OutcomeDone, e.Outcome)
}

func TestReduce_DeselectClearsEverything(t *testing.T) {
	next := dates.MustNew(2024, time.July, 1)
	s := Reduce(State{},
		Select{ID: "a"},
		SetOutcome{ID: "a", Outcome: OutcomeExtend},
		SetNextDate{ID: "a", Date: next},
		SetRemark{ID: "a", Remark: "later"},
		Attach{ID: "a", Attachment: &Attachment{FileName: "x.png", Data: []byte{1}}},
		Deselect{ID: "a"},
		Select{ID: "a"},
	)

	e, ok := s.Entry("a")
	require.True(t, ok)
	assert.Equal(t, Entry{Outcome: OutcomeDone}, e)
}

func TestReduce_DoneClearsNextDate(t *testing.T) {
	next := dates.MustNew(2024, time.July, 1)
	s := Reduce(State{}, Select{ID: "a"}, SetOutcome{ID: "a", Outcome: OutcomeExtend}, SetNextDate{ID: "a", Date: next})
	e, _ := s.Entry("a")
	assert.Equal(t, next, e.NextDate)

	s = Reduce(s, SetOutcome{ID: "a", Outcome: OutcomeDone})
	e, _ = s.Entry("a")
	assert.True(t, e.NextDate.IsZero())

	// a next date only sticks to an extension
	s = Reduce(s, SetNextDate{ID: "a", Date: next})
	e, _ = s.Entry("a")
	assert.True(t, e.NextDate.IsZero())
}

func TestReduce_IgnoresUnselectedAndKeepsOldValue(t *testing.T) {
	before := Reduce(State{}, Select{ID: "a"})
	after := Reduce(before, SetRemark{ID: "zzz", Remark: "nope"}, SetRemark{ID: "a", Remark: "ok"})

	e, _ := before.Entry("a")
	assert.Empty(t, e.Remark)
	e, _ = after.Entry("a")
	assert.Equal(t, "ok", e.Remark)
	assert.False(t, after.IsSelected("zzz"))
}

func TestReduce_SelectAllAndClearAll(t *testing.T) {
	s := Reduce(State{}, Select{ID: "b"}, SetRemark{ID: "b", Remark: "kept"}, SelectAll{IDs: []string{"a", "b", "c"}})
	assert.Equal(t, []string{"b", "a", "c"}, s.Selected())
	e, _ := s.Entry("b")
	assert.Equal(t, "kept", e.Remark)

	s = Reduce(s, ClearAll{})
	assert.Equal(t, 0, s.Len())
}

func TestValidate(t *testing.T) {
	next := dates.MustNew(2024, time.July, 1)
	sources := map[string]Source{
		"a": {TaskID: "1"},
		"b": {TaskID: "2", RequireAttachment: true},
	}

	tests := []struct {
		name  string
		state State
		rule  Rule
		count int
	}{
		{name: "empty selection", state: State{}, rule: RuleEmptySelection},
		{
			name:  "missing outcome",
			state: Reduce(State{}, Select{ID: "a"}, SetOutcome{ID: "a", Outcome: "maybe"}),
			rule:  RuleMissingOutcome, count: 1,
		},
		{
			name:  "extend without date",
			state: Reduce(State{}, Select{ID: "a"}, SetOutcome{ID: "a", Outcome: OutcomeExtend}),
			rule:  RuleMissingNextDate, count: 1,
		},
		{
			name: "outcome rule wins over date rule",
			state: Reduce(State{},
				Select{ID: "a"}, SetOutcome{ID: "a", Outcome: OutcomeExtend},
				Select{ID: "c"}, SetOutcome{ID: "c", Outcome: ""},
			),
			rule: RuleMissingOutcome, count: 1,
		},
		{
			name:  "required attachment missing",
			state: Reduce(State{}, Select{ID: "a"}, Select{ID: "b"}),
			rule:  RuleMissingAttachment, count: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.state, sources)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.rule, verr.Rule)
			assert.Equal(t, tt.count, verr.Count)
			assert.NotEmpty(t, verr.Error())
		})
	}

	ok := Reduce(State{},
		Select{ID: "a"},
		Select{ID: "b"}, SetOutcome{ID: "b", Outcome: OutcomeExtend}, SetNextDate{ID: "b", Date: next},
		Attach{ID: "b", Attachment: &Attachment{FileName: "p.jpg", Data: []byte("img")}},
	)
	assert.NoError(t, Validate(ok, sources))
}

func TestValidationErrorMessageNamesCount(t *testing.T) {
	err := &ValidationError{Rule: RuleMissingNextDate, Count: 3}
	assert.Contains(t, err.Error(), "3 item(s)")
	assert.Contains(t, err.Error(), `"Extend date"`)
}

func TestBuildBatch(t *testing.T) {
	today := dates.MustNew(2024, time.June, 10)
	next := dates.MustNew(2024, time.June, 20)
	file := &Attachment{FileName: "p.jpg", MimeType: "image/jpeg", Data: []byte("img")}
	sources := map[string]Source{
		"a": {TaskID: "11", Assignee: "Alice", Description: "call client", GivenBy: "Boss"},
		"b": {TaskID: "12", Assignee: "Bob", Description: "send quote", GivenBy: "Boss"},
	}
	s := Reduce(State{},
		Select{ID: "a"}, SetRemark{ID: "a", Remark: "done early"},
		Select{ID: "b"}, SetOutcome{ID: "b", Outcome: OutcomeExtend}, SetNextDate{ID: "b", Date: next},
		Attach{ID: "b", Attachment: file},
	)
	require.NoError(t, Validate(s, sources))

	rows := BuildBatch(s, sources, today)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"10/06/2024", "11", "Done", "", "done early", "", "", "Alice", "call client", "Boss"}, rows[0].Cells())
	assert.Nil(t, rows[0].Pending)

	assert.Equal(t, []string{"10/06/2024", "12", "Extend date", "20/06/2024", "", "", "", "Bob", "send quote", "Boss"}, rows[1].Cells())
	assert.Same(t, file, rows[1].Pending)
	assert.Len(t, rows[1].Cells(), 10)
}
