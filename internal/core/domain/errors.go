package domain

import "fmt"

// ValidationError reports malformed input. It is raised before any remote
// call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConfigError reports a missing or invalid spec/account attribute.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// RemoteError is a business-logic rejection by the ad platform. It is never
// retried.
type RemoteError struct {
	Code    int
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("platform error (%s #%d): %s", e.Type, e.Code, e.Message)
}

// TransportError is a network or HTTP level failure. Only the asset upload
// retries on it, within a bounded budget.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// SchedulingError reports an activation instant that is not strictly in the
// future at schedule time.
type SchedulingError struct {
	Msg string
}

func (e *SchedulingError) Error() string { return e.Msg }

// StorageError reports a local persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError is returned when provisioning aborts mid-sequence. Chain
// holds the gap-free prefix of resources created before the failing step so
// an operator can clean them up manually.
type PipelineError struct {
	Step  ResourceKind
	Chain ResourceChain
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s step with %d objects created: %v", e.Step, len(e.Chain), e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
