package models

import (
	"fmt"
	"time"
)

// Resolution status descriptors stored on each result
const (
	ResolutionSuccess         = "Sucesso"
	ResolutionNavigationError = "Erro: Navegação"
)

// ResolutionError builds the failure descriptor for an extraction error
func ResolutionError(err error) string {
	return fmt.Sprintf("Erro: %v", err)
}

// CampaignStatus tracks follow-up work on a result, independent of resolution
type CampaignStatus string

const (
	CampaignPending       CampaignStatus = "pending"
	CampaignQueued        CampaignStatus = "queued"
	CampaignSent          CampaignStatus = "sent"
	CampaignDelivered     CampaignStatus = "delivered"
	CampaignRead          CampaignStatus = "read"
	CampaignReplied       CampaignStatus = "replied"
	CampaignInterested    CampaignStatus = "interested"
	CampaignNotInterested CampaignStatus = "not_interested"
	CampaignError         CampaignStatus = "error"
)

var campaignStatuses = map[CampaignStatus]struct{}{
	CampaignPending:       {},
	CampaignQueued:        {},
	CampaignSent:          {},
	CampaignDelivered:     {},
	CampaignRead:          {},
	CampaignReplied:       {},
	CampaignInterested:    {},
	CampaignNotInterested: {},
	CampaignError:         {},
}

// IsValid reports whether s belongs to the campaign vocabulary
func (s CampaignStatus) IsValid() bool {
	_, ok := campaignStatuses[s]
	return ok
}

// Result is the persisted outcome of one identifier lookup.
// Registry attributes are nil when the page did not carry them.
type Result struct {
	ID                          int64          `json:"id"`
	BatchID                     string         `json:"batch_id"`
	InscricaoEstadual           string         `json:"inscricao_estadual"`
	CNPJ                        *string        `json:"cnpj,omitempty"`
	RazaoSocial                 *string        `json:"razao_social,omitempty"`
	NomeFantasia                *string        `json:"nome_fantasia,omitempty"`
	UnidadeFiscalizacao         *string        `json:"unidade_fiscalizacao,omitempty"`
	Logradouro                  *string        `json:"logradouro,omitempty"`
	BairroDistrito              *string        `json:"bairro_distrito,omitempty"`
	Municipio                   *string        `json:"municipio,omitempty"`
	UF                          *string        `json:"uf,omitempty"`
	CEP                         *string        `json:"cep,omitempty"`
	Telefone                    *string        `json:"telefone,omitempty"`
	Email                       *string        `json:"email,omitempty"`
	AtividadeEconomicaPrincipal *string        `json:"atividade_economica_principal,omitempty"`
	Condicao                    *string        `json:"condicao,omitempty"`
	FormaPagamento              *string        `json:"forma_pagamento,omitempty"`
	SituacaoCadastral           *string        `json:"situacao_cadastral,omitempty"`
	DataSituacaoCadastral       *string        `json:"data_situacao_cadastral,omitempty"`
	MotivoSituacaoCadastral     *string        `json:"motivo_situacao_cadastral,omitempty"`
	NomeContador                *string        `json:"nome_contador,omitempty"`
	Status                      string         `json:"status"`
	CampaignStatus              CampaignStatus `json:"campaign_status"`
	LastContacted               *time.Time     `json:"last_contacted,omitempty"`
	Notes                       *string        `json:"notes,omitempty"`
	CreatedAt                   time.Time      `json:"created_at"`
}

// Succeeded reports whether the lookup resolved the identifier
func (r *Result) Succeeded() bool {
	return r.Status == ResolutionSuccess
}

// NavigationFailure is the record written when the query form never produced a result page
func NavigationFailure(batchID, inscricao string) *Result {
	return &Result{
		BatchID:           batchID,
		InscricaoEstadual: inscricao,
		Status:            ResolutionNavigationError,
		CampaignStatus:    CampaignError,
	}
}
