package domain

import "fmt"

// CampaignStatus is the closed set of campaign states known to the system.
// Remote states outside the set map to StatusUnknown instead of leaking
// arbitrary strings into records.
type CampaignStatus string

const (
	StatusPaused   CampaignStatus = "PAUSED"
	StatusActive   CampaignStatus = "ACTIVE"
	StatusArchived CampaignStatus = "ARCHIVED"
	StatusDeleted  CampaignStatus = "DELETED"
	StatusUnknown  CampaignStatus = "UNKNOWN"
)

// ParseCampaignStatus maps a remote status string onto the closed set.
func ParseCampaignStatus(s string) CampaignStatus {
	switch CampaignStatus(s) {
	case StatusPaused, StatusActive, StatusArchived, StatusDeleted:
		return CampaignStatus(s)
	default:
		return StatusUnknown
	}
}

// Updatable reports whether the status may be sent to the platform in a
// status update. The platform only accepts ACTIVE, PAUSED and ARCHIVED.
func (s CampaignStatus) Updatable() bool {
	switch s {
	case StatusActive, StatusPaused, StatusArchived:
		return true
	}
	return false
}

// JobStatus is the state of a scheduled activation job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// ParseJobStatus validates a stored job status string.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobPending, JobCompleted, JobFailed, JobCancelled:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}
