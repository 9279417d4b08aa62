// internal/core/sped/consolidate.go
package sped

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"extraction-service/internal/domain"
)

// Source precedence when merging the same figure across documents.
var sourceRank = map[domain.FigureSource]int{
	domain.SourceDeclared:  3,
	domain.SourceAlternate: 2,
	domain.SourceEstimated: 1,
}

// defaultCycleDays is assumed for each cash-cycle component when the
// ledgers offer no plausible figure.
const defaultCycleDays = 30.0

// Consolidate merges the outputs of multiple parsed documents into one
// tax-composition, financial-result and cash-cycle report. It is a pure
// function over the completed document set.
func Consolidate(docs []*domain.ParsedDocument, opts domain.Options, logger *zap.Logger) (*domain.ConsolidatedReport, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("nenhum documento para consolidar")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	report := &domain.ConsolidatedReport{
		Company: mergeCompany(docs),
		Composition: domain.TaxComposition{
			Taxes: make(map[domain.TaxType]*domain.TaxLine),
		},
	}
	for _, doc := range docs {
		report.Sources = append(report.Sources, domain.SourceSummary{
			ID:             doc.ID,
			Family:         doc.Family,
			FileName:       doc.FileName,
			RecordsDecoded: doc.Meta.RecordsDecoded,
			RecordsSkipped: doc.Meta.RecordsSkipped,
		})
		report.Observations = append(report.Observations, ValidationObservations(doc)...)
	}

	uf := opts.UF
	if uf == "" {
		uf = report.Company.UF
	}

	// Revenue is the maximum across documents, never the sum: each
	// ledger reports the same economic activity from its own angle.
	revenue := 0.0
	for _, doc := range docs {
		if r := EstimateRevenue(doc); r > revenue {
			revenue = r
		}
	}

	merged := mergeFigures(docs, uf)
	buildComposition(report, merged, revenue)
	buildFinancialResults(report, docs, revenue)
	buildCashCycle(report, docs, revenue)

	if opts.WithProjection {
		report.Projection = buildProjection(report.Composition.TotalNetLiability, revenue, opts.TargetRate)
	}

	report.Quality = ScoreQuality(report, docs)

	logger.Info("consolidação concluída",
		zap.Int("documentos", len(docs)),
		zap.Float64("receita", revenue),
		zap.Float64("carga_total", report.Composition.TotalNetLiability),
		zap.String("qualidade", string(report.Quality.Level)))
	return report, nil
}

// mergeCompany picks, field by field, the first non-empty value found
// scanning the documents in family priority order.
func mergeCompany(docs []*domain.ParsedDocument) domain.CompanyInfo {
	var merged domain.CompanyInfo
	for _, family := range domain.FamilyPriority {
		for _, doc := range docs {
			if doc.Family != family {
				continue
			}
			fillCompany(&merged, doc.Company)
		}
	}
	return merged
}

func fillCompany(dst *domain.CompanyInfo, src domain.CompanyInfo) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.CNPJ == "" {
		dst.CNPJ = src.CNPJ
	}
	if dst.UF == "" {
		dst.UF = src.UF
	}
	if dst.IE == "" {
		dst.IE = src.IE
	}
	if dst.CityCode == "" {
		dst.CityCode = src.CityCode
	}
	if dst.CNAE == "" {
		dst.CNAE = src.CNAE
	}
	if dst.PeriodStart == "" {
		dst.PeriodStart = src.PeriodStart
	}
	if dst.PeriodEnd == "" {
		dst.PeriodEnd = src.PeriodEnd
	}
	if dst.LayoutVersion == "" {
		dst.LayoutVersion = src.LayoutVersion
	}
}

// mergeFigures resolves each document's figures and keeps, per (tax,
// direction) pair, the best-sourced one; ties on source take the
// largest value.
func mergeFigures(docs []*domain.ParsedDocument, uf string) FigureSet {
	merged := make(FigureSet)
	for _, doc := range docs {
		for tax, byDir := range ResolveFigures(doc, uf) {
			for dir, fig := range byDir {
				current := merged.Get(tax, dir)
				if better(fig, current) {
					merged.put(tax, dir, fig)
				}
			}
		}
	}
	return merged
}

func better(candidate, current domain.TaxFigure) bool {
	if current.Source == "" {
		return true
	}
	cr, br := sourceRank[candidate.Source], sourceRank[current.Source]
	if cr != br {
		return cr > br
	}
	return candidate.Value > current.Value
}

// buildComposition derives per-tax net liabilities and effective rates.
// Estimated figures are reported per tax but never added to the total:
// the total carries only figures the ledgers actually support.
func buildComposition(report *domain.ConsolidatedReport, merged FigureSet, revenue float64) {
	composition := &report.Composition
	for _, tax := range domain.AllTaxTypes {
		byDir, ok := merged[tax]
		if !ok {
			continue
		}
		line := &domain.TaxLine{
			Debits:  byDir[domain.DirectionDebit],
			Credits: byDir[domain.DirectionCredit],
		}
		net := line.Debits.Value - line.Credits.Value
		if net < 0 {
			net = 0
		}
		line.NetLiability = Round(net, 2)
		line.EffectiveRate = effectiveRate(report, tax, line.NetLiability, revenue)
		composition.Taxes[tax] = line

		if line.Debits.Source == domain.SourceEstimated {
			if line.NetLiability > 0 {
				report.Observations = append(report.Observations, fmt.Sprintf(
					"%s estimado (%s) e não somado à carga total", tax, line.Debits.Basis))
			}
			continue
		}
		composition.TotalNetLiability += line.NetLiability
	}
	composition.TotalNetLiability = Round(composition.TotalNetLiability, 2)

	if revenue > 0 {
		rate := composition.TotalNetLiability / revenue * 100
		if rate < 0 || rate > 100 {
			report.Observations = append(report.Observations, fmt.Sprintf(
				"Alíquota efetiva total implausível (%.2f%%) zerada", rate))
			rate = 0
		}
		composition.TotalEffectiveRate = Round(rate, 2)
	}
}

// effectiveRate computes liability/revenue as a percentage, clamping
// implausible results to zero with an observation.
func effectiveRate(report *domain.ConsolidatedReport, tax domain.TaxType, liability, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	rate := liability / revenue * 100
	if rate < 0 || rate > 100 {
		report.Observations = append(report.Observations, fmt.Sprintf(
			"Alíquota efetiva de %s implausível (%.2f%%) zerada", tax, rate))
		return 0
	}
	return Round(rate, 2)
}

// buildFinancialResults derives revenue, cost and margin figures from
// the accounting statements, guarding every margin against non-positive
// revenue.
func buildFinancialResults(report *domain.ConsolidatedReport, docs []*domain.ParsedDocument, revenue float64) {
	fin := &report.Financial
	fin.GrossRevenue = revenue
	fin.NetRevenue = revenue

	if net := maxStatementValue(docs, matchNetRevenue); net > 0 && net < maxPlausibleFigure {
		fin.NetRevenue = net
	}
	fin.TotalCost = maxStatementValue(docs, matchCost)
	fin.OperatingExp = maxStatementValue(docs, matchExpense)
	fin.NetIncome = signedStatementValue(docs, matchNetIncome)

	if fin.NetRevenue > 0 {
		fin.GrossMargin = Round((fin.NetRevenue-fin.TotalCost)/fin.NetRevenue, 4)
		fin.OperatingMargin = Round((fin.NetRevenue-fin.TotalCost-fin.OperatingExp)/fin.NetRevenue, 4)
		if fin.NetIncome != 0 {
			fin.NetMargin = Round(fin.NetIncome/fin.NetRevenue, 4)
		}
	}
}

func matchNetRevenue(desc string) bool {
	return strings.Contains(desc, "RECEITA LIQUIDA") || strings.Contains(desc, "RECEITA LÍQUIDA")
}

func matchCost(desc string) bool {
	return strings.Contains(desc, "CUSTO")
}

func matchExpense(desc string) bool {
	return strings.Contains(desc, "DESPESA")
}

func matchNetIncome(desc string) bool {
	return strings.Contains(desc, "LUCRO LIQUIDO") || strings.Contains(desc, "LUCRO LÍQUIDO") ||
		strings.Contains(desc, "RESULTADO LIQUIDO") || strings.Contains(desc, "RESULTADO LÍQUIDO") ||
		strings.Contains(desc, "RESULTADO DO EXERC")
}

// maxStatementValue returns the largest matching statement line across
// documents. Aggregation blocks repeat totals per level, so lines are
// never summed.
func maxStatementValue(docs []*domain.ParsedDocument, match func(string) bool) float64 {
	best := 0.0
	for _, doc := range docs {
		for _, line := range doc.Statements {
			if match(strings.ToUpper(line.Description)) && line.Value > best {
				best = line.Value
			}
		}
	}
	return best
}

// signedStatementValue returns the largest matching line applying the
// D/C indicator sign (a debit-side result is a loss).
func signedStatementValue(docs []*domain.ParsedDocument, match func(string) bool) float64 {
	best := 0.0
	found := false
	for _, doc := range docs {
		for _, line := range doc.Statements {
			if !match(strings.ToUpper(line.Description)) {
				continue
			}
			value := line.Value
			if strings.EqualFold(line.Indicator, "D") {
				value = -value
			}
			if !found || absFloat(value) > absFloat(best) {
				best = value
				found = true
			}
		}
	}
	return best
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// buildCashCycle derives the cash-conversion cycle, defaulting each
// component to 30 days when the ledgers offer no plausible figure.
func buildCashCycle(report *domain.ConsolidatedReport, docs []*domain.ParsedDocument, revenue float64) {
	cost := report.Financial.TotalCost
	if cost <= 0 {
		cost = revenue * 0.7
	}

	var basis []string
	cycle := domain.CashCycle{
		ReceivableDays: defaultCycleDays,
		InventoryDays:  defaultCycleDays,
		PayableDays:    defaultCycleDays,
	}

	if revenue > 0 {
		if receivables := maxAccountBalance(docs, matchReceivableAccount); receivables > 0 {
			days := receivables / revenue * 365
			if days > 0 && days <= 180 {
				cycle.ReceivableDays = Round(days, 1)
				basis = append(basis, "recebíveis do razão")
			}
		}
		if payables := maxAccountBalance(docs, matchPayableAccount); payables > 0 && cost > 0 {
			days := payables / cost * 365
			if days > 0 && days <= 180 {
				cycle.PayableDays = Round(days, 1)
				basis = append(basis, "fornecedores do razão")
			}
		}
		if inventory := inventoryValue(docs); inventory > 0 && cost > 0 {
			days := inventory / cost * 365
			if days > 0 && days <= 365 {
				cycle.InventoryDays = Round(days, 1)
				basis = append(basis, "estoque inventariado")
			}
		}
	}

	cycle.OperatingCycle = Round(cycle.ReceivableDays+cycle.InventoryDays, 1)
	cycle.NetCycle = Round(cycle.OperatingCycle-cycle.PayableDays, 1)
	if len(basis) == 0 {
		cycle.Basis = "prazos padrão de 30 dias"
	} else {
		cycle.Basis = strings.Join(basis, ", ")
	}
	report.CashCycle = cycle
}

func matchReceivableAccount(name string) bool {
	return strings.Contains(name, "CLIENTE") || strings.Contains(name, "DUPLICATAS A RECEBER")
}

func matchPayableAccount(name string) bool {
	return strings.Contains(name, "FORNECEDOR")
}

// maxAccountBalance joins the chart of accounts with the period
// balances and returns the largest closing balance whose account name
// matches.
func maxAccountBalance(docs []*domain.ParsedDocument, match func(string) bool) float64 {
	best := 0.0
	for _, doc := range docs {
		names := make(map[string]string, len(doc.Accounts))
		for _, acc := range doc.Accounts {
			names[acc.Code] = strings.ToUpper(acc.Name)
		}
		for _, bal := range doc.Balances {
			if match(names[bal.AccountCode]) && bal.Closing > best {
				best = bal.Closing
			}
		}
	}
	return best
}

// inventoryValue prefers the fiscal ledger's physical inventory total,
// falling back to stock accounts in the accounting ledger.
func inventoryValue(docs []*domain.ParsedDocument) float64 {
	best := 0.0
	for _, doc := range docs {
		for _, inv := range doc.Inventories {
			if inv.TotalValue > best {
				best = inv.TotalValue
			}
		}
	}
	if best > 0 {
		return best
	}
	return maxAccountBalance(docs, func(name string) bool {
		return strings.Contains(name, "ESTOQUE")
	})
}

// buildProjection blends the current-regime liability with the target
// regime across the statutory transition schedule and accumulates the
// estimated cash-flow impact.
func buildProjection(currentLiability, revenue, targetRate float64) *domain.TransitionProjection {
	if targetRate <= 0 {
		targetRate = DefaultTargetRate
	}
	projection := &domain.TransitionProjection{TargetRate: targetRate}
	targetTax := revenue * targetRate / 100
	for _, step := range transitionSchedule {
		projected := Round(currentLiability*step.currentWeight+targetTax*step.targetWeight, 2)
		projection.Years = append(projection.Years, domain.ProjectionYear{
			Year:          step.year,
			CurrentWeight: step.currentWeight,
			TargetWeight:  step.targetWeight,
			ProjectedTax:  projected,
		})
		projection.TotalImpact += projected - currentLiability
	}
	projection.TotalImpact = Round(projection.TotalImpact, 2)
	return projection
}
