package models

// Layout lists field names in spreadsheet column order.
type Layout []string

// Index returns the column of name, or -1.
func (l Layout) Index(name string) int {
	for i, f := range l {
		if f == name {
			return i
		}
	}
	return -1
}

// Field names shared by several partitions.
const (
	FieldName        = "name"
	FieldTaskID      = "taskId"
	FieldGivenBy     = "givenBy"
	FieldDescription = "description"
	FieldStartDate   = "startDate"
	FieldDate        = "date"
	FieldMonthName   = "monthName"
	FieldActual      = "actual"
	FieldStatus      = "status"
	FieldReqAttach   = "requireAttachment"
	FieldCondition   = "conditionDate"
	FieldProject     = "project"
	FieldEndDate     = "endDate"
	FieldTarget      = "target"
	FieldAchievement = "achievement"
	FieldNextDate    = "nextDate"
)

var AttendanceLayout = Layout{
	"employeeCode", FieldName, "totalPunch", "inTime", "outTime", "punchMiss",
	"inLate", "outLate", "totalDays", "late", FieldMonthName,
	"weeklyLatePercent", "monthlyLatePercent",
}

// AttendanceClockFields hold times of day.
var AttendanceClockFields = []string{"inTime", "outTime", "inLate", "outLate"}

var ScoreLayout = Layout{
	FieldStartDate, FieldEndDate, FieldName, FieldTarget, FieldAchievement,
	"scoreWorkNotDone", "scoreWorkNotDoneOnTime", "totalPending",
}

var QuickTaskLayout = Layout{
	FieldDate, FieldProject, FieldGivenBy, FieldName, FieldDescription,
	FieldStartDate, "freq", "enableReminders", FieldReqAttach,
}

// QuickTaskDateFields are read from the raw cell, not the locale formatted one.
var QuickTaskDateFields = []string{FieldDate, FieldStartDate}

var ChecklistLayout = Layout{
	"timestamp", FieldTaskID, "firm", FieldGivenBy, FieldName, FieldDescription,
	FieldStartDate, "freq", "enableReminders", FieldReqAttach, FieldActual,
	"colL", FieldStatus, "remarks", "uploadedImage",
}

var ChecklistDateFields = []string{FieldStartDate, FieldActual}

var ChecklistHistoryLayout = Layout{
	"timestamp", FieldTaskID, FieldStatus, FieldNextDate, "remarks", "image",
	FieldCondition, FieldName, FieldDescription, FieldGivenBy,
}

var ChecklistHistoryDateFields = []string{FieldNextDate, FieldCondition}

// Dashboard columns of the checklist and delegation partitions.
const (
	ColTaskID            = 1
	ColProject           = 2
	ColAssignee          = 4
	ColDescription       = 5
	ColStartDate         = 6
	ColFrequency         = 7
	ColChecklistActual   = 10
	ColDelegationActual  = 11
	ColDelegationRating  = 18
	ColMasterDepartment  = 0
	ColMasterGivenBy     = 1
	ColMasterDoer        = 2
	ColWorkingDay        = 0
	ScoreFirstDataRow    = 4
	PendingStatusDoneTag = "DONE"
)
