package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

var resultColumns = []string{
	"id", "batch_id", "inscricao_estadual", "cnpj", "razao_social", "nome_fantasia",
	"unidade_fiscalizacao", "logradouro", "bairro_distrito", "municipio", "uf", "cep",
	"telefone", "email", "atividade_economica_principal", "condicao", "forma_pagamento",
	"situacao_cadastral", "data_situacao_cadastral", "motivo_situacao_cadastral",
	"nome_contador", "status", "campaign_status", "last_contacted", "notes", "created_at",
}

// AppendResult inserts a result and fills in its ID and creation time
func (s *BatchStore) AppendResult(ctx context.Context, r *models.Result) error {
	if r.CampaignStatus == "" {
		r.CampaignStatus = models.CampaignPending
	}
	r.CreatedAt = s.now()

	query, args, err := builder.Insert("results").
		Columns(resultColumns[1:]...).
		Values(
			r.BatchID, r.InscricaoEstadual, nullable(r.CNPJ), nullable(r.RazaoSocial),
			nullable(r.NomeFantasia), nullable(r.UnidadeFiscalizacao), nullable(r.Logradouro),
			nullable(r.BairroDistrito), nullable(r.Municipio), nullable(r.UF), nullable(r.CEP),
			nullable(r.Telefone), nullable(r.Email), nullable(r.AtividadeEconomicaPrincipal),
			nullable(r.Condicao), nullable(r.FormaPagamento), nullable(r.SituacaoCadastral),
			nullable(r.DataSituacaoCadastral), nullable(r.MotivoSituacaoCadastral),
			nullable(r.NomeContador), r.Status, string(r.CampaignStatus),
			formatNullableTime(r.LastContacted), nullable(r.Notes), formatTime(r.CreatedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert result for %s: %w", r.InscricaoEstadual, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("result id: %w", err)
	}
	r.ID = id
	return nil
}

// ListResults returns every result across batches, newest first
func (s *BatchStore) ListResults(ctx context.Context) ([]models.Result, error) {
	return s.queryResults(ctx, builder.Select(resultColumns...).
		From("results").
		OrderBy("id DESC"))
}

// ListBatchResults returns the results of one batch in processing order
func (s *BatchStore) ListBatchResults(ctx context.Context, batchID string) ([]models.Result, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.queryResults(ctx, builder.Select(resultColumns...).
		From("results").
		Where(sq.Eq{"batch_id": batchID}).
		OrderBy("id ASC"))
}

// GetResult loads one result
func (s *BatchStore) GetResult(ctx context.Context, id int64) (*models.Result, error) {
	results, err := s.queryResults(ctx, builder.Select(resultColumns...).
		From("results").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

// UpdateCampaignStatus changes the follow-up state of a result. Notes are
// replaced only when non-nil; contactedAt is stored as given.
func (s *BatchStore) UpdateCampaignStatus(ctx context.Context, id int64, status models.CampaignStatus, notes *string, contactedAt *time.Time) error {
	update := builder.Update("results").
		Set("campaign_status", string(status)).
		Set("last_contacted", formatNullableTime(contactedAt)).
		Where(sq.Eq{"id": id})
	if notes != nil {
		update = update.Set("notes", *notes)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update campaign status: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update campaign status for %d: %w", id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *BatchStore) queryResults(ctx context.Context, q sq.SelectBuilder) ([]models.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select results: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := make([]models.Result, 0)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

func scanResult(rows *sql.Rows) (models.Result, error) {
	var (
		r              models.Result
		attrs          [18]sql.NullString
		campaignStatus string
		lastContacted  sql.NullString
		notes          sql.NullString
		createdAt      string
	)

	dest := []interface{}{&r.ID, &r.BatchID, &r.InscricaoEstadual}
	for i := range attrs {
		dest = append(dest, &attrs[i])
	}
	dest = append(dest, &r.Status, &campaignStatus, &lastContacted, &notes, &createdAt)

	if err := rows.Scan(dest...); err != nil {
		return r, fmt.Errorf("scan result: %w", err)
	}

	targets := []**string{
		&r.CNPJ, &r.RazaoSocial, &r.NomeFantasia, &r.UnidadeFiscalizacao, &r.Logradouro,
		&r.BairroDistrito, &r.Municipio, &r.UF, &r.CEP, &r.Telefone, &r.Email,
		&r.AtividadeEconomicaPrincipal, &r.Condicao, &r.FormaPagamento, &r.SituacaoCadastral,
		&r.DataSituacaoCadastral, &r.MotivoSituacaoCadastral, &r.NomeContador,
	}
	for i, target := range targets {
		*target = nullString(attrs[i])
	}

	r.CampaignStatus = models.CampaignStatus(campaignStatus)
	r.LastContacted = nullTime(lastContacted)
	r.Notes = nullString(notes)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}
