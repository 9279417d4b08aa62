// internal/core/report/excel_test.go
package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extraction-service/internal/domain"
)

func sampleReport() *domain.ConsolidatedReport {
	return &domain.ConsolidatedReport{
		Company: domain.CompanyInfo{
			Name: "EMPRESA TESTE LTDA", CNPJ: "11222333000181", UF: "SP",
			PeriodStart: "01012024", PeriodEnd: "31012024",
		},
		Composition: domain.TaxComposition{
			Taxes: map[domain.TaxType]*domain.TaxLine{
				domain.TaxICMS: {
					Debits:       domain.TaxFigure{Value: 8000, Source: domain.SourceDeclared},
					Credits:      domain.TaxFigure{Value: 3000, Source: domain.SourceDeclared},
					NetLiability: 5000, EffectiveRate: 10,
				},
			},
			TotalNetLiability:  5000,
			TotalEffectiveRate: 10,
		},
		Financial:    domain.FinancialResults{GrossRevenue: 50000, NetRevenue: 50000},
		Quality:      domain.QualityScore{Total: 85, Level: domain.QualityHigh},
		Observations: []string{"Observação de teste"},
	}
}

func TestBuildWorkbook(t *testing.T) {
	rep := sampleReport()

	f, err := BuildWorkbook(rep)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Resumo")
	assert.Contains(t, sheets, "Impostos")
	assert.NotContains(t, sheets, "Projeção", "no projection was requested")
	assert.NotContains(t, sheets, "Sheet1")

	name, err := f.GetCellValue("Resumo", "B1")
	require.NoError(t, err)
	assert.Equal(t, "EMPRESA TESTE LTDA", name)

	tax, err := f.GetCellValue("Impostos", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ICMS", tax)
}

func TestBuildWorkbookWithProjection(t *testing.T) {
	rep := sampleReport()
	rep.Projection = &domain.TransitionProjection{
		TargetRate: 26.5,
		Years: []domain.ProjectionYear{
			{Year: 2026, CurrentWeight: 1, TargetWeight: 0, ProjectedTax: 5000},
			{Year: 2033, CurrentWeight: 0, TargetWeight: 1, ProjectedTax: 13250},
		},
		TotalImpact: 8250,
	}

	f, err := BuildWorkbook(rep)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Projeção")

	year, err := f.GetCellValue("Projeção", "A4")
	require.NoError(t, err)
	assert.Equal(t, "2026", year)
}
