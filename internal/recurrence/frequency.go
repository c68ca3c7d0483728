package recurrence

// Frequency is the recurrence policy chosen when a task is assigned.
type Frequency string

const (
	OneTime       Frequency = "one-time"
	Daily         Frequency = "daily"
	Weekly        Frequency = "weekly"
	Fortnightly   Frequency = "fortnightly"
	Monthly       Frequency = "monthly"
	Quarterly     Frequency = "quarterly"
	Yearly        Frequency = "yearly"
	EndOfWeek1    Frequency = "end-of-1st-week"
	EndOfWeek2    Frequency = "end-of-2nd-week"
	EndOfWeek3    Frequency = "end-of-3rd-week"
	EndOfWeek4    Frequency = "end-of-4th-week"
	EndOfLastWeek Frequency = "end-of-last-week"
)

const lastWeekNumber = -1

// Option is a frequency with its display label.
type Option struct {
	Value Frequency `json:"value"`
	Label string    `json:"label"`
}

var options = []Option{
	{OneTime, "One Time (No Recurrence)"},
	{Daily, "Daily"},
	{Weekly, "Weekly"},
	{Fortnightly, "Fortnightly"},
	{Monthly, "Monthly"},
	{Quarterly, "Quarterly"},
	{Yearly, "Yearly"},
	{EndOfWeek1, "End of 1st Week"},
	{EndOfWeek2, "End of 2nd Week"},
	{EndOfWeek3, "End of 3rd Week"},
	{EndOfWeek4, "End of 4th Week"},
	{EndOfLastWeek, "End of Last Week"},
}

// Options lists the supported frequencies in display order.
func Options() []Option {
	return append([]Option(nil), options...)
}

// Known reports whether f is one of the supported policies.
func (f Frequency) Known() bool {
	for _, o := range options {
		if o.Value == f {
			return true
		}
	}
	return false
}

// offset is the calendar step for the fixed-interval policies.
func (f Frequency) offset() (days, months, years int, ok bool) {
	switch f {
	case Weekly:
		return 7, 0, 0, true
	case Fortnightly:
		return 14, 0, 0, true
	case Monthly:
		return 0, 1, 0, true
	case Quarterly:
		return 0, 3, 0, true
	case Yearly:
		return 0, 0, 1, true
	}
	return 0, 0, 0, false
}

// weekNumber maps the end-of-week policies to 1..4, or lastWeekNumber.
func (f Frequency) weekNumber() (int, bool) {
	switch f {
	case EndOfWeek1:
		return 1, true
	case EndOfWeek2:
		return 2, true
	case EndOfWeek3:
		return 3, true
	case EndOfWeek4:
		return 4, true
	case EndOfLastWeek:
		return lastWeekNumber, true
	}
	return 0, false
}
