// internal/core/sped/service_test.go
package sped

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extraction-service/internal/domain"
)

var fiscalFixture = strings.Join([]string{
	"|0000|019|0|01012024|31012024|EMPRESA TESTE LTDA|11222333000181||SP|123456789|3550308|",
	"|E100|01012024|31012024|",
	"|E110|8000,00|0|0|0|3000,00|0|0|0|0|5000,00|0|5000,00|0|0|",
	"|9900|E110|1|",
}, "\n")

var contribFixture = strings.Join([]string{
	"|0000|006|0|||01012024|31012024|EMPRESA TESTE LTDA|11222333000181|SP|3550308|||",
	"|0110|1|1|1||",
	"|M100|101|0|12121,21|1,65|0|0|200,00|0|0|0|200,00|0|0|200,00|",
	"|M210|01|50000,00|39393,94|0|0|39393,94|1,65|||650,00|0|0|0|0|650,00|",
	"|9900|M210|1|",
}, "\n")

func TestExtractDocument(t *testing.T) {
	service := NewService(nil)

	doc, err := service.ExtractDocument(strings.NewReader(contribFixture), "efd_contribuicoes_012024.txt")
	require.NoError(t, err)

	assert.Equal(t, domain.FamilyContributions, doc.Family)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "EMPRESA TESTE LTDA", doc.Company.Name)
	assert.Equal(t, 5, doc.Meta.RecordsDecoded)
	assert.Empty(t, doc.Meta.Errors)

	require.Len(t, doc.Apurations, 1)
	ap := doc.Apurations[0]
	assert.Equal(t, domain.TaxPIS, ap.Tax)
	assert.InDelta(t, 50000.0, ap.GrossRevenue, EPSILON)
	assert.InDelta(t, 650.0, ap.FinalValue, EPSILON)
	require.Len(t, ap.Validations, 2)
	assert.True(t, ap.Validations[0].IsValid, "the declared base matches the formula")
	assert.True(t, ap.Validations[1].IsValid, "the declared contribution matches the formula")
}

func TestExtractConsolidatedCrossFamily(t *testing.T) {
	service := NewService(nil)

	report, err := service.ExtractConsolidated(
		[]io.Reader{strings.NewReader(fiscalFixture), strings.NewReader(contribFixture)},
		[]string{"sped_fiscal_012024.txt", "efd_contribuicoes_012024.txt"},
		domain.Options{},
	)
	require.NoError(t, err)

	assert.Equal(t, "EMPRESA TESTE LTDA", report.Company.Name)
	assert.Equal(t, "11222333000181", report.Company.CNPJ)
	assert.Equal(t, "SP", report.Company.UF)
	require.Len(t, report.Sources, 2)
	assert.Equal(t, domain.FamilyFiscal, report.Sources[0].Family)
	assert.Equal(t, domain.FamilyContributions, report.Sources[1].Family)

	icms := report.Composition.Taxes[domain.TaxICMS]
	require.NotNil(t, icms)
	assert.Equal(t, domain.SourceDeclared, icms.Debits.Source)
	assert.InDelta(t, 8000.0, icms.Debits.Value, EPSILON)
	assert.InDelta(t, 3000.0, icms.Credits.Value, EPSILON)
	assert.InDelta(t, 5000.0, icms.NetLiability, EPSILON)

	pis := report.Composition.Taxes[domain.TaxPIS]
	require.NotNil(t, pis)
	assert.Equal(t, domain.SourceDeclared, pis.Debits.Source)
	assert.InDelta(t, 650.0, pis.Debits.Value, EPSILON)
	assert.InDelta(t, 200.0, pis.Credits.Value, EPSILON)
	assert.InDelta(t, 450.0, pis.NetLiability, EPSILON)

	// COFINS has no records of its own: derived from PIS, reported but
	// kept out of the total.
	cofins := report.Composition.Taxes[domain.TaxCOFINS]
	require.NotNil(t, cofins)
	assert.Equal(t, domain.SourceEstimated, cofins.Debits.Source)

	assert.InDelta(t, 50000.0, report.Financial.GrossRevenue, EPSILON)
	assert.InDelta(t, 5450.0, report.Composition.TotalNetLiability, EPSILON)
	assert.InDelta(t, 10.9, report.Composition.TotalEffectiveRate, EPSILON)

	assert.Equal(t, domain.QualityHigh, report.Quality.Level)
	assert.Nil(t, report.Projection)
}

func TestExtractConsolidatedWithProjection(t *testing.T) {
	service := NewService(nil)

	report, err := service.ExtractConsolidated(
		[]io.Reader{strings.NewReader(contribFixture)},
		[]string{"efd_contribuicoes_012024.txt"},
		domain.Options{WithProjection: true},
	)
	require.NoError(t, err)

	require.NotNil(t, report.Projection)
	assert.InDelta(t, DefaultTargetRate, report.Projection.TargetRate, EPSILON)
	assert.Len(t, report.Projection.Years, 8)
}

func TestExtractConsolidatedNoFiles(t *testing.T) {
	service := NewService(nil)

	_, err := service.ExtractConsolidated(nil, nil, domain.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nenhum arquivo")
}

func TestExtractDocumentLatin1(t *testing.T) {
	// "São Paulo Serviços" in ISO-8859-1 bytes.
	raw := []byte("|0000|006|0|||01012024|31012024|S\xe3o Paulo Servi\xe7os Ltda|11222333000181|SP|3550308|||\n")
	service := NewService(nil)

	doc, err := service.ExtractDocument(strings.NewReader(string(raw)), "efd_contribuicoes.txt")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo Serviços Ltda", doc.Company.Name)
}
