package model

import "time"

// IssueType classifies a maintenance problem found during cleaning.
type IssueType string

const (
	IssuePlumbing   IssueType = "PLUMBING"
	IssueElectrical IssueType = "ELECTRICAL"
	IssueDamage     IssueType = "DAMAGE"
	IssueOther      IssueType = "OTHER"
)

// IssueStatus tracks resolution of a reported issue.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "OPEN"
	IssueInProgress IssueStatus = "IN_PROGRESS"
	IssueResolved   IssueStatus = "RESOLVED"
)

// Issue mirrors the `issues` table.  Issues are reported by cleaners
// against a booking and triaged by admins, who may note which staff
// (plumber, electrician, ...) was dispatched.
type Issue struct {
	ID            uint64      `json:"id"`
	BookingID     uint64      `json:"booking_id"`
	ReportedBy    uint64      `json:"reported_by"`
	IssueType     IssueType   `json:"issue_type"`
	Description   string      `json:"description"`
	PhotoURL      string      `json:"photo_url,omitempty"`
	Status        IssueStatus `json:"status"`
	AssignedStaff string      `json:"assigned_staff,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
