package models

import (
	"sheetdesk/internal/dates"
	"sheetdesk/internal/recurrence"
	"sheetdesk/internal/records"
)

// Task is one row of the checklist or delegation partition as shown on the
// project dashboard.
type Task struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	AssignedTo string         `json:"assignedTo"`
	Project    string         `json:"projectName"`
	StartDate  string         `json:"taskStartDate"`
	Completed  string         `json:"completionDate,omitempty"`
	Status     records.Status `json:"status"`
	Frequency  string         `json:"frequency"`
}

// AssignRequest is the assign-task form.
type AssignRequest struct {
	Department        string               `json:"department"`
	GivenBy           string               `json:"givenBy"`
	Doers             []string             `json:"doers"`
	Description       string               `json:"description"`
	StartDate         dates.Date           `json:"startDate"`
	Frequency         recurrence.Frequency `json:"frequency"`
	EnableReminders   bool                 `json:"enableReminders"`
	RequireAttachment bool                 `json:"requireAttachment"`
}

// GeneratedTask is one scheduled occurrence ready to be written.
type GeneratedTask struct {
	Department        string               `json:"department"`
	GivenBy           string               `json:"givenBy"`
	Doer              string               `json:"doer"`
	Description       string               `json:"description"`
	DueDate           dates.Date           `json:"dueDate"`
	Frequency         recurrence.Frequency `json:"frequency"`
	EnableReminders   bool                 `json:"enableReminders"`
	RequireAttachment bool                 `json:"requireAttachment"`
}

type AssignPreview struct {
	Tasks    []GeneratedTask               `json:"tasks"`
	Adjusted *recurrence.StartDateAdjusted `json:"adjusted,omitempty"`
	Notice   string                        `json:"notice,omitempty"`
}

type AssignResult struct {
	Sheet       string `json:"sheet"`
	Count       int    `json:"count"`
	FirstTaskID int    `json:"firstTaskId"`
	LastTaskID  int    `json:"lastTaskId"`
}

type AssignOptions struct {
	Departments []string            `json:"departments"`
	GivenBy     []string            `json:"givenBy"`
	Doers       []string            `json:"doers"`
	Frequencies []recurrence.Option `json:"frequencies"`
}
