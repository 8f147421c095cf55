package models

import (
	"strconv"
	"time"
)

// StartProcessingResponse is returned when a document is accepted
type StartProcessingResponse struct {
	ProcessID string `json:"processId" example:"6f1c2a8e-3b1d-4a55-9d7e-2f8b1c0a9e44"`
}

// ProgressEvent is one snapshot on the progress stream
type ProgressEvent struct {
	Total     int    `json:"total" example:"42"`
	Processed int    `json:"processed" example:"17"`
	Status    string `json:"status" example:"processing"`
}

// ProgressNotFound is the single event sent for an unknown batch
type ProgressNotFound struct {
	Status string `json:"status" example:"not_found"`
}

// NotFoundEvent is the terminal payload for unknown batches
var NotFoundEvent = ProgressNotFound{Status: "not_found"}

// ResultSummary is the flat projection used by the results listing
type ResultSummary struct {
	ID                string         `json:"id" example:"12"`
	InscricaoEstadual string         `json:"inscricaoEstadual" example:"123456789"`
	CNPJ              *string        `json:"cnpj" example:"12.345.678/0001-90"`
	RazaoSocial       *string        `json:"razaoSocial" example:"EMPRESA EXEMPLO LTDA"`
	Municipio         *string        `json:"municipio" example:"SALVADOR"`
	Telefone          *string        `json:"telefone" example:"(71) 3333-4444"`
	SituacaoCadastral *string        `json:"situacaoCadastral" example:"ATIVO"`
	MotivoSituacao    *string        `json:"motivoSituacao"`
	NomeContador      *string        `json:"nomeContador"`
	Status            string         `json:"status" example:"Sucesso"`
	CampaignStatus    CampaignStatus `json:"campaignStatus" example:"pending"`
}

// NewResultSummary projects a stored result
func NewResultSummary(r Result) ResultSummary {
	return ResultSummary{
		ID:                strconv.FormatInt(r.ID, 10),
		InscricaoEstadual: r.InscricaoEstadual,
		CNPJ:              r.CNPJ,
		RazaoSocial:       r.RazaoSocial,
		Municipio:         r.Municipio,
		Telefone:          r.Telefone,
		SituacaoCadastral: r.SituacaoCadastral,
		MotivoSituacao:    r.MotivoSituacaoCadastral,
		NomeContador:      r.NomeContador,
		Status:            r.Status,
		CampaignStatus:    r.CampaignStatus,
	}
}

// BatchResultItem is the minimal per-batch projection
type BatchResultItem struct {
	ID          string  `json:"id" example:"12"`
	RazaoSocial *string `json:"razaoSocial" example:"EMPRESA EXEMPLO LTDA"`
	Status      string  `json:"status" example:"Sucesso"`
}

// NewBatchResultItem projects a stored result
func NewBatchResultItem(r Result) BatchResultItem {
	return BatchResultItem{
		ID:          strconv.FormatInt(r.ID, 10),
		RazaoSocial: r.RazaoSocial,
		Status:      r.Status,
	}
}

// BatchResultsResponse wraps the results of one batch
type BatchResultsResponse struct {
	Results []BatchResultItem `json:"results"`
}

// CampaignStatusRequest updates the follow-up state of a result
type CampaignStatusRequest struct {
	CampaignStatus CampaignStatus `json:"campaignStatus" binding:"required,campaign_status" example:"sent"`
	Notes          *string        `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Invalid file type"`
	Message   string    `json:"message" example:"Only PDF documents are accepted"`
	Code      string    `json:"code,omitempty" example:"INVALID_FILE_TYPE"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string    `json:"path" example:"/start-processing"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]ServiceInfo `json:"services"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
}

// ServiceInfo represents individual service health
type ServiceInfo struct {
	Status    string    `json:"status" example:"healthy"`
	LastCheck time.Time `json:"last_check" example:"2024-01-15T10:30:00Z"`
	Error     string    `json:"error,omitempty"`
}

// MetricsResponse represents metrics response
type MetricsResponse struct {
	Workers   WorkerMetrics  `json:"workers"`
	Browser   BrowserMetrics `json:"browser"`
	Cache     CacheMetrics   `json:"cache"`
	System    SystemMetrics  `json:"system"`
	Timestamp time.Time      `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// WorkerMetrics represents batch worker pool metrics
type WorkerMetrics struct {
	Workers   int   `json:"workers" example:"2"`
	Active    int64 `json:"active" example:"1"`
	Queued    int   `json:"queued" example:"0"`
	Submitted int64 `json:"submitted" example:"12"`
	Completed int64 `json:"completed" example:"11"`
	Failed    int64 `json:"failed" example:"0"`
}

// BrowserMetrics represents browser session metrics
type BrowserMetrics struct {
	ActiveSessions int64 `json:"active_sessions" example:"1"`
	StartedTotal   int64 `json:"started_total" example:"12"`
	FailedStarts   int64 `json:"failed_starts" example:"0"`
}

// CacheMetrics represents record cache metrics
type CacheMetrics struct {
	Enabled bool   `json:"enabled" example:"true"`
	Backend string `json:"backend" example:"redis"`
	Hits    int64  `json:"hits" example:"40"`
	Misses  int64  `json:"misses" example:"8"`
}

// SystemMetrics represents runtime metrics
type SystemMetrics struct {
	MemoryUsage float64 `json:"memory_usage" example:"512.5"`
	Goroutines  int     `json:"goroutines" example:"125"`
}
