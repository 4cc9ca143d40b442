package models

import (
	"strings"
	"time"
)

// ApplicationStatus represents the lifecycle state of a job application.
type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "Pending"
	StatusApplied      ApplicationStatus = "Applied"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusOffered      ApplicationStatus = "Offered"
	StatusRejected     ApplicationStatus = "Rejected"
	StatusAccepted     ApplicationStatus = "Accepted"
	StatusWithdrawn    ApplicationStatus = "Withdrawn"
)

// AllowedStatuses defines valid application statuses (lowercased lookup).
var AllowedStatuses = map[string]ApplicationStatus{
	"pending":      StatusPending,
	"applied":      StatusApplied,
	"interviewing": StatusInterviewing,
	"offered":      StatusOffered,
	"rejected":     StatusRejected,
	"accepted":     StatusAccepted,
	"withdrawn":    StatusWithdrawn,
}

// JobKind represents the employment type of a position.
type JobKind string

const (
	KindFullTime   JobKind = "Full-time"
	KindPartTime   JobKind = "Part-time"
	KindContract   JobKind = "Contract"
	KindInternship JobKind = "Internship"
	KindFreelance  JobKind = "Freelance"
)

// AllowedKinds defines valid job types (lowercased lookup).
var AllowedKinds = map[string]JobKind{
	"full-time":  KindFullTime,
	"fulltime":   KindFullTime,
	"full time":  KindFullTime,
	"part-time":  KindPartTime,
	"parttime":   KindPartTime,
	"part time":  KindPartTime,
	"contract":   KindContract,
	"internship": KindInternship,
	"freelance":  KindFreelance,
}

// Priority represents how important an application is to the user.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// AllowedPriorities defines valid priorities (lowercased lookup).
var AllowedPriorities = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
}

// Application is a normalized job-application record. Company and Position
// are always non-empty for records produced by the import pipeline.
type Application struct {
	ID            string            `json:"id" db:"id"`
	Company       string            `json:"company" db:"company"`
	Position      string            `json:"position" db:"position"`
	Location      string            `json:"location,omitempty" db:"location"`
	Status        ApplicationStatus `json:"status" db:"status"`
	Type          JobKind           `json:"type" db:"type"`
	Priority      Priority          `json:"priority" db:"priority"`
	AppliedDate   time.Time         `json:"applied_date" db:"applied_date"`
	ResponseDate  *time.Time        `json:"response_date,omitempty" db:"response_date"`
	InterviewDate *time.Time        `json:"interview_date,omitempty" db:"interview_date"`
	Salary        string            `json:"salary,omitempty" db:"salary"`
	Notes         string            `json:"notes,omitempty" db:"notes"`
	ContactPerson string            `json:"contact_person,omitempty" db:"contact_person"`
	ContactEmail  string            `json:"contact_email,omitempty" db:"contact_email"`
	Website       string            `json:"website,omitempty" db:"website"`
	Tags          []string          `json:"tags,omitempty" db:"-"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// DuplicateKey returns the normalized (company, position) pair used for
// duplicate clustering: case-folded and whitespace-trimmed.
func (a *Application) DuplicateKey() string {
	return DuplicateKey(a.Company, a.Position)
}

// DuplicateKey builds the normalized clustering key for a company/position pair.
func DuplicateKey(company, position string) string {
	return strings.ToLower(strings.TrimSpace(company)) + "\x00" + strings.ToLower(strings.TrimSpace(position))
}
