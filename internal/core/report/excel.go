// internal/core/report/excel.go
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"extraction-service/internal/domain"
)

// BuildWorkbook renders a consolidated report as an XLSX workbook with
// a summary sheet, a per-tax composition sheet and, when present, the
// transition projection.
func BuildWorkbook(rep *domain.ConsolidatedReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, rep); err != nil {
		return nil, err
	}
	if err := writeTaxSheet(f, rep); err != nil {
		return nil, err
	}
	if rep.Projection != nil {
		if err := writeProjectionSheet(f, rep.Projection); err != nil {
			return nil, err
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeSummarySheet(f *excelize.File, rep *domain.ConsolidatedReport) error {
	const sheet = "Resumo"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Empresa", rep.Company.Name},
		{"CNPJ", rep.Company.CNPJ},
		{"UF", rep.Company.UF},
		{"Período", fmt.Sprintf("%s a %s", rep.Company.PeriodStart, rep.Company.PeriodEnd)},
		{},
		{"Receita bruta", rep.Financial.GrossRevenue},
		{"Receita líquida", rep.Financial.NetRevenue},
		{"Custo total", rep.Financial.TotalCost},
		{"Despesas operacionais", rep.Financial.OperatingExp},
		{"Margem bruta", rep.Financial.GrossMargin},
		{"Margem operacional", rep.Financial.OperatingMargin},
		{"Margem líquida", rep.Financial.NetMargin},
		{},
		{"Carga tributária total", rep.Composition.TotalNetLiability},
		{"Alíquota efetiva total (%)", rep.Composition.TotalEffectiveRate},
		{},
		{"Prazo de recebimento (dias)", rep.CashCycle.ReceivableDays},
		{"Prazo de estoque (dias)", rep.CashCycle.InventoryDays},
		{"Prazo de pagamento (dias)", rep.CashCycle.PayableDays},
		{"Ciclo operacional (dias)", rep.CashCycle.OperatingCycle},
		{"Ciclo de caixa (dias)", rep.CashCycle.NetCycle},
		{},
		{"Qualidade da extração", string(rep.Quality.Level)},
		{"Pontuação", rep.Quality.Total},
	}
	if err := writeRows(f, sheet, rows, 1); err != nil {
		return err
	}

	row := len(rows) + 2
	for _, obs := range rep.Observations {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, obs); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeTaxSheet(f *excelize.File, rep *domain.ConsolidatedReport) error {
	const sheet = "Impostos"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Tributo", "Débitos", "Origem débitos", "Créditos", "Origem créditos", "Saldo devedor", "Alíquota efetiva (%)"},
	}
	for _, tax := range domain.AllTaxTypes {
		line, ok := rep.Composition.Taxes[tax]
		if !ok {
			continue
		}
		rows = append(rows, []interface{}{
			string(tax),
			line.Debits.Value,
			string(line.Debits.Source),
			line.Credits.Value,
			string(line.Credits.Source),
			line.NetLiability,
			line.EffectiveRate,
		})
	}
	rows = append(rows, []interface{}{"TOTAL", "", "", "", "", rep.Composition.TotalNetLiability, rep.Composition.TotalEffectiveRate})
	return writeRows(f, sheet, rows, 1)
}

func writeProjectionSheet(f *excelize.File, projection *domain.TransitionProjection) error {
	const sheet = "Projeção"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Alíquota alvo (%)", projection.TargetRate},
		{},
		{"Ano", "Peso regime atual", "Peso regime alvo", "Tributo projetado"},
	}
	for _, year := range projection.Years {
		rows = append(rows, []interface{}{year.Year, year.CurrentWeight, year.TargetWeight, year.ProjectedTax})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Impacto acumulado", projection.TotalImpact})
	return writeRows(f, sheet, rows, 1)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, startRow int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
