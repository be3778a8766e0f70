package domain

import "time"

// ActivationZone is the fixed civil offset (UTC+8) used to interpret
// activation instants given without an explicit timezone.
var ActivationZone = time.FixedZone("UTC+8", 8*60*60)

// StartTimeLayout is the wire format the platform expects for ad group
// start times, always rendered in ActivationZone.
const StartTimeLayout = "2006-01-02T15:04:05-0700"

// ScheduledJob is a one-shot durable activation job. A job references its
// campaign by id only; neither owns the other's lifecycle.
type ScheduledJob struct {
	ID               string     `json:"job_id"`
	CampaignID       string     `json:"campaign_id"`
	RemoteCampaignID string     `json:"meta_campaign_id"`
	ActivateAt       time.Time  `json:"scheduled_time"`
	Status           JobStatus  `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ExecutedAt       *time.Time `json:"executed_at,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// Finish moves a PENDING job to the given terminal status. Transitions are
// monotone: a terminal job is never changed again.
func (j *ScheduledJob) Finish(status JobStatus, at time.Time, errMsg string) error {
	if j.Status.Terminal() {
		return &SchedulingError{Msg: "job " + j.ID + " already " + string(j.Status)}
	}
	if !status.Terminal() {
		return &SchedulingError{Msg: "job " + j.ID + ": " + string(status) + " is not a terminal status"}
	}
	j.Status = status
	j.ExecutedAt = &at
	j.Error = errMsg
	return nil
}
