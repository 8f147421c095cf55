package services

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when the worker pool cannot accept another batch.
	ErrQueueFull = errors.New("batch queue is full")
	// ErrPoolStopped is returned when submitting to a stopped pool.
	ErrPoolStopped = errors.New("worker pool is stopped")
	// ErrUnsupportedDocument is returned for documents without a reader.
	ErrUnsupportedDocument = errors.New("unsupported document type")
	// ErrInterrupted ends a batch whose worker was cancelled by shutdown.
	ErrInterrupted = errors.New("batch interrupted by shutdown")
	// ErrInvalidCampaignStatus is returned for statuses outside the campaign vocabulary.
	ErrInvalidCampaignStatus = errors.New("invalid campaign status")
)

// SessionInitError reports that the browser runtime could not be started.
// It is fatal for the batch that requested the session.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("session init: %v", e.Err)
}

func (e *SessionInitError) Unwrap() error {
	return e.Err
}
