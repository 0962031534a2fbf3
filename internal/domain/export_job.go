package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportRunning   ExportStatus = "running"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// ExportJob tracks one asynchronous PDF export of a resume.
type ExportJob struct {
	ID        uuid.UUID              `json:"id"`
	ResumeID  string                 `json:"resumeId"`
	UserID    string                 `json:"userId"`
	Status    ExportStatus           `json:"status"`
	Pages     int                    `json:"pages,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func NewExportJob(resumeID, userID string) *ExportJob {
	now := time.Now().UTC()
	return &ExportJob{
		ID:        uuid.New(),
		ResumeID:  resumeID,
		UserID:    userID,
		Status:    ExportPending,
		Metadata:  map[string]interface{}{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Done reports whether the job reached a final status.
func (j *ExportJob) Done() bool {
	return j.Status == ExportCompleted || j.Status == ExportFailed
}
