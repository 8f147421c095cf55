package models

import "time"

// BatchStatus is the lifecycle state of a batch
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchError      BatchStatus = "error"
)

// IsTerminal reports whether the status can no longer change
func (s BatchStatus) IsTerminal() bool {
	return s == BatchCompleted || s == BatchError
}

// Batch represents one document-processing run
type Batch struct {
	ID        string      `json:"id" example:"6f1c2a8e-3b1d-4a55-9d7e-2f8b1c0a9e44"`
	Filename  string      `json:"filename" example:"contribuintes.pdf"`
	Total     int         `json:"total" example:"42"`
	Processed int         `json:"processed" example:"17"`
	Status    BatchStatus `json:"status" example:"processing"`
	StartTime time.Time   `json:"start_time" example:"2024-01-15T10:30:00Z"`
	EndTime   *time.Time  `json:"end_time,omitempty" example:"2024-01-15T10:42:10Z"`

	// TotalKnown is false until the scanner has counted the identifiers.
	TotalKnown bool `json:"-"`
}

// Progress returns the snapshot published to observers
func (b *Batch) Progress() ProgressEvent {
	return ProgressEvent{
		Total:     b.Total,
		Processed: b.Processed,
		Status:    string(b.Status),
	}
}
