package models

import (
	"sheetdesk/internal/dates"
	"sheetdesk/internal/records"
)

// PageQuery carries the filter inputs shared by the list pages.
type PageQuery struct {
	Search  string
	Member  string
	Members []string
	Month   string
	From    dates.Date
	To      dates.Date
}

type AttendanceView struct {
	Office      []records.Record `json:"office"`
	Site        []records.Record `json:"site"`
	OfficeCount int              `json:"officeCount"`
	SiteCount   int              `json:"siteCount"`
	Months      []string         `json:"months"`
	OfficeError string           `json:"officeError,omitempty"`
	SiteError   string           `json:"siteError,omitempty"`
}

type ListView struct {
	Records  []records.Record `json:"records"`
	Total    int              `json:"total"`
	Filtered int              `json:"filtered"`
}

type ChecklistStats struct {
	TotalPending      int            `json:"totalPending"`
	FilteredPending   int            `json:"filteredPending"`
	TotalCompleted    int            `json:"totalCompleted"`
	FilteredCompleted int            `json:"filteredCompleted"`
	MemberCompleted   map[string]int `json:"memberCompleted"`
}

type ChecklistView struct {
	Pending []records.Record `json:"pending"`
	History []records.Record `json:"history,omitempty"`
	Members []string         `json:"members"`
	Stats   ChecklistStats   `json:"stats"`
}

// SubmitEntry is the annotation the user made on one pending record.
type SubmitEntry struct {
	ID         string          `json:"id" binding:"required"`
	Outcome    string          `json:"outcome"`
	NextDate   dates.Date      `json:"nextDate"`
	Remark     string          `json:"remark"`
	Attachment *AttachmentBody `json:"attachment,omitempty"`
}

// AttachmentBody is an inline file, base64 encoded, as sent by the browser.
type AttachmentBody struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type SubmitRequest struct {
	Entries []SubmitEntry `json:"entries"`
}

type SubmitResult struct {
	Sheet          string   `json:"sheet"`
	Submitted      int      `json:"submitted"`
	Failed         []string `json:"failed,omitempty"`
	UploadFailures int      `json:"uploadFailures,omitempty"`
}

type DashboardMode string

const (
	ModeChecklist  DashboardMode = "checklist"
	ModeDelegation DashboardMode = "delegation"
)

type StaffRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Project   string `json:"projectName"`
	Total     int    `json:"totalTasks"`
	Completed int    `json:"completedTasks"`
	Pending   int    `json:"pendingTasks"`
	Overdue   int    `json:"overdueTasks"`
	Progress  int    `json:"progress"`
}

type MonthBar struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

type PieSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type RatingBuckets struct {
	One       int `json:"completedRatingOne"`
	Two       int `json:"completedRatingTwo"`
	ThreePlus int `json:"completedRatingThreePlus"`
}

type ProjectDashboard struct {
	Mode           DashboardMode `json:"mode"`
	Tasks          []Task        `json:"allTasks"`
	Staff          []StaffRow    `json:"staffMembers"`
	Total          int           `json:"totalTasks"`
	Completed      int           `json:"completedTasks"`
	Pending        int           `json:"pendingTasks"`
	Overdue        int           `json:"overdueTasks"`
	CompletionRate float64       `json:"completionRate"`
	Bars           []MonthBar    `json:"barChartData"`
	Pie            []PieSlice    `json:"pieChartData"`
	Ratings        RatingBuckets `json:"ratings"`
}
