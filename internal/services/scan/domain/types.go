// Package domain defines scan jobs, requests, and results
package domain

import (
	"time"

	"llmo/internal/core/auditscore"
	"llmo/internal/core/visibility"
)

// ScanType selects the pipeline a job runs
type ScanType string

// Scan types
const (
	TypeVisibility ScanType = "visibility"
	TypeAudit      ScanType = "audit"
	TypeSimulation ScanType = "simulation"
)

// Status is the job state machine:
// pending -> processing -> completed | failed | cancelled
type Status string

// Job states
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status is final
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ScanRequest is the inbound payload that starts a scan
type ScanRequest struct {
	BrandName       string   `json:"brand_name" validate:"required,min=1,max=255"`
	Domain          string   `json:"domain" validate:"required,url_like"`
	Keywords        []string `json:"keywords" validate:"max=20,dive,min=1,max=100"`
	Competitors     []string `json:"competitors" validate:"max=5,dive,min=1,max=255"`
	ScanType        ScanType `json:"scan_type" validate:"required,oneof=visibility audit simulation"`
	Industry        string   `json:"industry" validate:"omitempty,max=100"`
	ProductCategory string   `json:"product_category" validate:"omitempty,max=255"`
}

// Job is one scan run
type Job struct {
	ID        string      `json:"id"`
	Request   ScanRequest `json:"request"`
	Status    Status      `json:"status"`
	Progress  int         `json:"progress"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ProgressEvent is handed to observers at every milestone
type ProgressEvent struct {
	JobID    string `json:"job_id"`
	Progress int    `json:"progress"`
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
}

// ProviderAnswer records one provider call's outcome for the result payload
type ProviderAnswer struct {
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	Cached    bool   `json:"cached"`
	Failed    bool   `json:"failed"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Result is the terminal output of a completed scan
type Result struct {
	JobID      string             `json:"job_id"`
	Type       ScanType           `json:"type"`
	Visibility *visibility.Result `json:"visibility,omitempty"`
	Audit      *auditscore.Result `json:"audit,omitempty"`
	Answers    []ProviderAnswer   `json:"answers,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
