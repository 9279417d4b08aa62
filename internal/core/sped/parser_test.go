// internal/core/sped/parser_test.go
package sped

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extraction-service/internal/domain"
)

func TestParseDocumentUnknownRecordsAreSkipped(t *testing.T) {
	lines := []string{
		"|0000|019|0|01012024|31012024|EMPRESA TESTE LTDA|11222333000181||SP|123456789|3550308|",
		"|0150|C01|FORNECEDOR ALFA|01058|12345678000195|||3550308|",
		"|0150|C02|FORNECEDOR BETA|01058|22345678000195|||3550308|",
		"|0150|C03|CLIENTE GAMA|01058|32345678000195|||3550308|",
		"|0150|C04|CLIENTE DELTA|01058|42345678000195|||3550308|",
		"|0150|C05|TRANSPORTADORA|01058|52345678000195|||3550308|",
		"|0150|C06|DISTRIBUIDORA|01058|62345678000195|||3550308|",
		"|0150|C07|ATACADISTA|01058|72345678000195|||3550308|",
		"|H005|31012024|125000,00|01|",
		"|Z999|registro inexistente no layout|",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyFiscal, "sped_fiscal.txt")

	assert.Equal(t, 10, doc.Meta.LinesTotal)
	assert.Equal(t, 9, doc.Meta.RecordsDecoded)
	assert.Equal(t, 1, doc.Meta.RecordsSkipped)
	assert.Empty(t, doc.Meta.Errors, "unknown codes are tolerated, not errors")

	assert.Equal(t, "EMPRESA TESTE LTDA", doc.Company.Name)
	assert.Equal(t, "11222333000181", doc.Company.CNPJ)
	assert.Equal(t, "SP", doc.Company.UF)
	assert.Len(t, doc.Participants, 7)
	require.Len(t, doc.Inventories, 1)
	assert.InDelta(t, 125000.0, doc.Inventories[0].TotalValue, EPSILON)
}

func TestParseDocumentStructuralGuard(t *testing.T) {
	lines := []string{
		"|E110|100,00|",
		"X|E110|100,00|0|0|0|50,00|0|0|0|0|50,00|0|50,00|0|0|",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyFiscal, "sped_fiscal.txt")

	assert.Equal(t, 0, doc.Meta.RecordsDecoded)
	assert.Equal(t, 2, doc.Meta.RecordsSkipped)
	require.Len(t, doc.Meta.Errors, 2)
	assert.Equal(t, 1, doc.Meta.Errors[0].Line)
	assert.Contains(t, doc.Meta.Errors[0].Message, "estrutura inválida")
	assert.Equal(t, 2, doc.Meta.Errors[1].Line)
}

func TestParseDocumentDecoderRejection(t *testing.T) {
	// Structurally valid 0150 with an empty participant code.
	lines := []string{"|0150||SEM CODIGO|01058|12345678000195|||3550308|"}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyFiscal, "sped_fiscal.txt")

	assert.Equal(t, 0, doc.Meta.RecordsDecoded)
	require.Len(t, doc.Meta.Errors, 1)
	assert.Contains(t, doc.Meta.Errors[0].Message, "rejeitado")
	assert.Empty(t, doc.Participants)
}

func TestParseDocumentBlankLines(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"|0000|019|0|01012024|31012024|EMPRESA TESTE LTDA|11222333000181||SP|123456789|3550308|",
		"\r\n",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyFiscal, "sped_fiscal.txt")

	assert.Equal(t, 4, doc.Meta.LinesTotal)
	assert.Equal(t, 1, doc.Meta.RecordsDecoded)
	assert.Equal(t, 0, doc.Meta.RecordsSkipped)
}

func TestParseDocumentAdjustmentOrdering(t *testing.T) {
	lines := []string{
		// Adjustment before any aggregate: must be flagged, never dropped.
		"|M215|0|100,00|AJ01|DOC1|AJUSTE ANTECIPADO|01012024|",
		"|M210|01|50000,00|39393,94|0|0|39393,94|1,65|||650,00|0|0|0|0|650,00|",
		"|M220|0|30,00|AJ02|DOC2|AJUSTE DA CONTRIBUICAO|01012024|",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyContributions, "efd_contribuicoes.txt")

	require.Len(t, doc.Adjustments, 2)
	assert.True(t, doc.Adjustments[0].Orphaned, "detail before its aggregate is orphaned")
	assert.False(t, doc.Adjustments[1].Orphaned)

	require.Len(t, doc.Apurations, 1)
	ap := doc.Apurations[0]
	require.Len(t, ap.Children, 1, "only the detail after the aggregate attaches")
	assert.InDelta(t, 30.0, ap.Children[0].Value, EPSILON)
	assert.Equal(t, domain.AdjustIncrease, ap.Children[0].Direction)
}

func TestParseDocumentICMSApuration(t *testing.T) {
	lines := []string{
		"|E100|01012024|31012024|",
		"|E110|8000,00|0|0|0|3000,00|0|0|0|0|5000,00|0|5000,00|0|0|",
		"|E111|SP230100|ESTORNO DE DEBITO|150,00|",
		"|9900|E110|1|",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyFiscal, "sped_fiscal.txt")

	require.Len(t, doc.Apurations, 1)
	ap := doc.Apurations[0]
	assert.Equal(t, domain.TaxICMS, ap.Tax)
	assert.InDelta(t, 8000.0, ap.Apportioned, EPSILON)
	assert.InDelta(t, 3000.0, ap.TotalCredits, EPSILON)
	assert.InDelta(t, 5000.0, ap.FinalValue, EPSILON)

	require.Len(t, ap.Children, 1)
	assert.Equal(t, domain.AdjustDecrease, ap.Children[0].Direction, "third character 2 lowers the balance")

	require.Len(t, doc.Counts, 1)
	assert.Equal(t, "E110", doc.Counts[0].TypeCode)
	assert.Equal(t, 1, doc.Counts[0].Count)
}

func TestParseDocumentCompanyCNAEFromRevenue(t *testing.T) {
	lines := []string{
		"|0000|LECF|0013|11222333000181|EMPRESA TESTE LTDA|0||||01012024|31012024|N|",
		"|Y540|11222333000181|250000,00|4711301|",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyECF, "ecf_2024.txt")

	require.Len(t, doc.Revenues, 1)
	assert.Equal(t, "4711301", doc.Revenues[0].CNAE)
	assert.Equal(t, "4711301", doc.Company.CNAE, "the establishment CNAE reaches the company block")
}

func TestParseDocumentICMSChildSumConsistency(t *testing.T) {
	// Document adjustments (VL_AJ_DEBITOS 100) have no E111 children;
	// the single E111 of 150 matches VL_TOT_AJ_DEBITOS exactly, so a
	// self-consistent file must pass every check.
	lines := []string{
		"|E110|8000,00|100,00|150,00|0|3000,00|0|0|0|0|5250,00|0|5250,00|0|0|",
		"|E111|SP000100|AJUSTE DE APURACAO|150,00|",
	}

	doc := NewParser(nil).ParseDocument(lines, domain.FamilyFiscal, "sped_fiscal.txt")

	require.Len(t, doc.Apurations, 1)
	ap := doc.Apurations[0]
	assert.InDelta(t, 250.0, ap.AdjustIncrease, EPSILON)
	assert.InDelta(t, 150.0, ap.DetailIncrease, EPSILON)

	require.NotEmpty(t, ap.Validations)
	for _, v := range ap.Validations {
		assert.True(t, v.IsValid, v.Formula)
	}
	assert.Empty(t, ValidationObservations(doc))
}
