package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/logger"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
	"github.com/lucasaraujosgc-hue/crm/internal/testhelpers"
)

func TestParseRecordReadsEveryField(t *testing.T) {
	r := services.ParseRecord(loadPage(t, "result_page.html"), "123456789")

	assert.Equal(t, models.ResolutionSuccess, r.Status)
	assert.Equal(t, "123456789", r.InscricaoEstadual)
	assert.Equal(t, models.CampaignPending, r.CampaignStatus)

	want := map[string]*string{
		"12.345.678/0001-90":     r.CNPJ,
		"EMPRESA EXEMPLO LTDA":   r.RazaoSocial,
		"EXEMPLO":                r.NomeFantasia,
		"INFRAZ VAREJO":          r.UnidadeFiscalizacao,
		"RUA DAS FLORES, 100":    r.Logradouro,
		"CENTRO":                 r.BairroDistrito,
		"SALVADOR":               r.Municipio,
		"BA":                     r.UF,
		"40000-000":              r.CEP,
		"(71) 3333-4444":         r.Telefone,
		"contato@exemplo.com.br": r.Email,
		"NORMAL":                 r.Condicao,
		"CONTA CORRENTE FISCAL":  r.FormaPagamento,
		"ATIVO":                  r.SituacaoCadastral,
		"01/02/2020":             r.DataSituacaoCadastral,
		"REGULAR":                r.MotivoSituacaoCadastral,
		"MARIA CONTADORA":        r.NomeContador,
	}
	for value, field := range want {
		if assert.NotNil(t, field, value) {
			assert.Equal(t, value, *field)
		}
	}

	require.NotNil(t, r.AtividadeEconomicaPrincipal)
	assert.Equal(t,
		"4711302 - Comércio varejista de mercadorias em geral, com predominância de produtos alimentícios",
		*r.AtividadeEconomicaPrincipal)
}

func TestParseRecordFallsBackToEntityLabels(t *testing.T) {
	r := services.ParseRecord(loadPage(t, "entity_page.html"), "987654321")

	require.NotNil(t, r.RazaoSocial)
	assert.Equal(t, "COMERCIO ENTIDADE ME", *r.RazaoSocial)
	require.NotNil(t, r.Municipio)
	assert.Equal(t, "FEIRA DE SANTANA", *r.Municipio)
	require.NotNil(t, r.SituacaoCadastral)
	assert.Equal(t, "BAIXADO", *r.SituacaoCadastral)
	require.NotNil(t, r.AtividadeEconomicaPrincipal)
	assert.Equal(t, "4781400 - Comércio varejista de artigos do vestuário", *r.AtividadeEconomicaPrincipal)
}

func TestParseRecordLeavesMissingFieldsAbsent(t *testing.T) {
	r := services.ParseRecord(loadPage(t, "entity_page.html"), "987654321")

	assert.Equal(t, models.ResolutionSuccess, r.Status)
	assert.Nil(t, r.CNPJ)
	assert.Nil(t, r.Email)
	assert.Nil(t, r.NomeContador)
	assert.Nil(t, r.MotivoSituacaoCadastral)
}

func TestParseRecordSkipsEmptyValues(t *testing.T) {
	markup := `<table><tr><td><b>Telefone:</b>&nbsp;</td></tr></table>`
	r := services.ParseRecord(markup, "123456789")

	assert.Nil(t, r.Telefone)
}

func TestParseRecordIsDeterministic(t *testing.T) {
	page := loadPage(t, "result_page.html")

	first := services.ParseRecord(page, "123456789")
	second := services.ParseRecord(page, "123456789")
	assert.Equal(t, first, second)
}

func TestExtractReportsMissingMarker(t *testing.T) {
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"123456789": {MissingMarker: true},
	})
	session := submitted(t, factory, "123456789")

	extractor := services.NewRecordExtractor(testRegistry(), logger.Discard())
	r := extractor.Extract(context.Background(), session, "123456789")

	assert.True(t, strings.HasPrefix(r.Status, "Erro: "), r.Status)
	assert.Nil(t, r.RazaoSocial)
}

func TestExtractRecoversFromPanics(t *testing.T) {
	factory := testhelpers.NewFakeSessionFactory(map[string]testhelpers.FakePage{
		"123456789": {PanicOnMarkup: true},
	})
	session := submitted(t, factory, "123456789")

	extractor := services.NewRecordExtractor(testRegistry(), logger.Discard())
	r := extractor.Extract(context.Background(), session, "123456789")

	assert.Contains(t, r.Status, "IE 123456789")
	assert.Contains(t, r.Status, "renderer crashed")
	assert.False(t, r.Succeeded())
}

// submitted returns a session already showing the result page for ie
func submitted(t *testing.T, factory *testhelpers.FakeSessionFactory, ie string) services.Session {
	t.Helper()
	ctx := context.Background()

	session, err := factory.NewSession(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Fill(ctx, services.CSS("input"), ie))
	require.NoError(t, session.Click(ctx, services.CSS("input")))
	return session
}
