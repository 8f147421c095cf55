package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

// fieldRule maps one result attribute to the labels the registry prints for it.
// Variants are tried in order; the page mixes plain and entity-encoded accents.
type fieldRule struct {
	name   string
	labels []string
	// nextRow reads the whole following table row instead of the label's sibling.
	nextRow bool
	assign  func(r *models.Result, value string)
}

var fieldTable = []fieldRule{
	{name: "cnpj", labels: []string{"CNPJ:"},
		assign: func(r *models.Result, v string) { r.CNPJ = &v }},
	{name: "razao_social", labels: []string{"Razão Social:", "Raz&atilde;o Social:"},
		assign: func(r *models.Result, v string) { r.RazaoSocial = &v }},
	{name: "nome_fantasia", labels: []string{"Nome Fantasia:"},
		assign: func(r *models.Result, v string) { r.NomeFantasia = &v }},
	{name: "unidade_fiscalizacao", labels: []string{"Unidade de Fiscalização:", "Unidade de Fiscaliza&ccedil;&atilde;o:"},
		assign: func(r *models.Result, v string) { r.UnidadeFiscalizacao = &v }},
	{name: "logradouro", labels: []string{"Logradouro:"},
		assign: func(r *models.Result, v string) { r.Logradouro = &v }},
	{name: "bairro_distrito", labels: []string{"Bairro/Distrito:"},
		assign: func(r *models.Result, v string) { r.BairroDistrito = &v }},
	{name: "municipio", labels: []string{"Município:", "Munic&iacute;pio:"},
		assign: func(r *models.Result, v string) { r.Municipio = &v }},
	{name: "uf", labels: []string{"UF:"},
		assign: func(r *models.Result, v string) { r.UF = &v }},
	{name: "cep", labels: []string{"CEP:"},
		assign: func(r *models.Result, v string) { r.CEP = &v }},
	{name: "telefone", labels: []string{"Telefone:"},
		assign: func(r *models.Result, v string) { r.Telefone = &v }},
	{name: "email", labels: []string{"E-mail:"},
		assign: func(r *models.Result, v string) { r.Email = &v }},
	{name: "condicao", labels: []string{"Condição:", "Condi&ccedil;&atilde;o:"},
		assign: func(r *models.Result, v string) { r.Condicao = &v }},
	{name: "forma_pagamento", labels: []string{"Forma de pagamento:"},
		assign: func(r *models.Result, v string) { r.FormaPagamento = &v }},
	{name: "situacao_cadastral", labels: []string{"Situação Cadastral Vigente:", "Situa&ccedil;&atilde;o Cadastral Vigente:"},
		assign: func(r *models.Result, v string) { r.SituacaoCadastral = &v }},
	{name: "data_situacao_cadastral", labels: []string{"Data desta Situação Cadastral:", "Data desta Situa&ccedil;&atilde;o Cadastral:"},
		assign: func(r *models.Result, v string) { r.DataSituacaoCadastral = &v }},
	{name: "motivo_situacao_cadastral", labels: []string{"Motivo desta Situação Cadastral:", "Motivo desta Situa&ccedil;&atilde;o Cadastral:"},
		assign: func(r *models.Result, v string) { r.MotivoSituacaoCadastral = &v }},
	{name: "nome_contador", labels: []string{"Nome:"},
		assign: func(r *models.Result, v string) { r.NomeContador = &v }},
	{name: "atividade_economica_principal", labels: []string{"Atividade Econômica Principal", "Atividade Econ&ocirc;mica Principal"},
		nextRow: true,
		assign:  func(r *models.Result, v string) { r.AtividadeEconomicaPrincipal = &v }},
}

// RecordExtractor turns a registry result page into a Result
type RecordExtractor struct {
	marker  Locator
	timeout time.Duration
	logger  *logrus.Logger
}

// NewRecordExtractor creates an extractor waiting for the configured marker
func NewRecordExtractor(cfg config.RegistryConfig, logger *logrus.Logger) *RecordExtractor {
	return &RecordExtractor{
		marker:  XPath(cfg.MarkerXPath),
		timeout: cfg.ExtractTimeout,
		logger:  logger,
	}
}

// Extract waits for the result page and parses it. It never fails: problems
// are reported through the result's resolution status.
func (e *RecordExtractor) Extract(ctx context.Context, session Session, inscricao string) (result models.Result) {
	log := e.logger.WithField("inscricao_estadual", inscricao)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("Extraction aborted")
			result = failedResult(inscricao, fmt.Errorf("IE %s: %v", inscricao, r))
		}
	}()

	if err := session.WaitFor(ctx, Present(e.marker), e.timeout); err != nil {
		log.WithError(err).Warn("Result page marker not found")
		return failedResult(inscricao, err)
	}

	markup, err := session.CurrentMarkup(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read result page")
		return failedResult(inscricao, fmt.Errorf("IE %s: %w", inscricao, err))
	}

	result = ParseRecord(markup, inscricao)
	log.WithFields(logrus.Fields{
		"status":       result.Status,
		"razao_social": deref(result.RazaoSocial),
	}).Info("Record extracted")
	return result
}

// ParseRecord reads every known field from markup. The output depends only
// on its inputs.
func ParseRecord(markup, inscricao string) (result models.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failedResult(inscricao, fmt.Errorf("IE %s: %v", inscricao, r))
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return failedResult(inscricao, fmt.Errorf("IE %s: parse markup: %w", inscricao, err))
	}

	result = models.Result{
		InscricaoEstadual: inscricao,
		Status:            models.ResolutionSuccess,
		CampaignStatus:    models.CampaignPending,
	}

	labels := collectLabels(doc)
	for _, rule := range fieldTable {
		if value, ok := rule.extract(labels); ok {
			rule.assign(&result, value)
		}
	}
	return result
}

type labelNode struct {
	sel  *goquery.Selection
	text string
}

func collectLabels(doc *goquery.Document) []labelNode {
	var labels []labelNode
	doc.Find("b").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, labelNode{sel: s, text: normalizeText(s.Text())})
	})
	return labels
}

// extract returns the value next to the first label matching a variant.
// An empty value falls through to the next variant.
func (r fieldRule) extract(labels []labelNode) (string, bool) {
	for _, variant := range r.labels {
		want := normalizeText(variant)
		for _, label := range labels {
			if !strings.Contains(label.text, want) {
				continue
			}

			var value string
			if r.nextRow {
				value = strings.Join(strings.Fields(normalizeText(followingRowText(label.sel))), " ")
			} else {
				value = normalizeText(siblingText(label.sel))
			}
			if value != "" {
				return value, true
			}
			break
		}
	}
	return "", false
}

// siblingText returns the text of the node right after the label
func siblingText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	for n := s.Get(0).NextSibling; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.TextNode:
			return n.Data
		case html.ElementNode:
			return goquery.NewDocumentFromNode(n).Text()
		}
	}
	return ""
}

func followingRowText(s *goquery.Selection) string {
	row := s.Closest("tr")
	if row.Length() == 0 {
		return ""
	}
	return row.NextAllFiltered("tr").First().Text()
}

// normalizeText decodes entities left in the text, turns NBSP into spaces,
// composes accents and trims
func normalizeText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

func failedResult(inscricao string, err error) models.Result {
	return models.Result{
		InscricaoEstadual: inscricao,
		Status:            models.ResolutionError(err),
		CampaignStatus:    models.CampaignPending,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
