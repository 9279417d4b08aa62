// internal/core/sped/fallback.go
package sped

import (
	"fmt"
	"strings"

	"extraction-service/internal/domain"
)

// maxPlausibleFigure bounds every resolved figure; anything at or above
// it is treated as implausible and the chain moves on.
const maxPlausibleFigure = 1e9

func plausible(v float64) bool {
	return v > 0 && v < maxPlausibleFigure
}

// familyTaxes lists the taxes each document family is able to report.
// The fallback chain only runs for a family's own taxes; a goods ledger
// never speaks for PIS or IRPJ.
var familyTaxes = map[domain.DocumentFamily][]domain.TaxType{
	domain.FamilyFiscal:        {domain.TaxICMS, domain.TaxIPI},
	domain.FamilyContributions: {domain.TaxPIS, domain.TaxCOFINS},
	domain.FamilyECF:           {domain.TaxIRPJ, domain.TaxCSLL},
	domain.FamilyECD:           {},
}

// FigureSet holds the resolved figures of one document, keyed by tax
// type and direction.
type FigureSet map[domain.TaxType]map[domain.Direction]domain.TaxFigure

// Get returns the figure for a pair, zero-valued when absent.
func (fs FigureSet) Get(tax domain.TaxType, dir domain.Direction) domain.TaxFigure {
	if byDir, ok := fs[tax]; ok {
		return byDir[dir]
	}
	return domain.TaxFigure{}
}

func (fs FigureSet) put(tax domain.TaxType, dir domain.Direction, fig domain.TaxFigure) {
	if fs[tax] == nil {
		fs[tax] = make(map[domain.Direction]domain.TaxFigure)
	}
	fs[tax][dir] = fig
}

// ResolveFigures runs the priority-ordered fallback chain for every
// (tax type, direction) pair of one document: declared value, alternate
// record layout, proportional estimate from a correlated tax, then the
// regime/turnover estimate. The first strategy returning a plausible
// positive value wins and its origin is recorded on the figure.
func ResolveFigures(doc *domain.ParsedDocument, uf string) FigureSet {
	figures := make(FigureSet)
	revenue := EstimateRevenue(doc)
	taxes := familyTaxes[doc.Family]

	// Declared and alternate strategies first, so the correlated
	// estimates below only ever lean on directly supported figures.
	for _, tax := range taxes {
		for _, dir := range []domain.Direction{domain.DirectionDebit, domain.DirectionCredit} {
			if fig, ok := declaredFigure(doc, tax, dir); ok {
				figures.put(tax, dir, fig)
				continue
			}
			if fig, ok := alternateFigure(doc, tax, dir); ok {
				figures.put(tax, dir, fig)
			}
		}
	}

	for _, tax := range taxes {
		for _, dir := range []domain.Direction{domain.DirectionDebit, domain.DirectionCredit} {
			if _, ok := figures[tax][dir]; ok {
				continue
			}
			if fig, ok := correlatedFigure(figures, tax, dir); ok {
				figures.put(tax, dir, fig)
				continue
			}
			if dir == domain.DirectionDebit {
				if fig, ok := estimatedFigure(tax, revenue, uf); ok {
					figures.put(tax, dir, fig)
					continue
				}
			}
			figures.put(tax, dir, domain.TaxFigure{Source: domain.SourceEstimated, Basis: "sem dados disponíveis"})
		}
	}
	return figures
}

// declaredFigure reads the primary apuration records of a tax. For the
// debit direction it prefers the period-final value, then the
// apportioned value, then rate times adjusted base computed manually.
func declaredFigure(doc *domain.ParsedDocument, tax domain.TaxType, dir domain.Direction) (domain.TaxFigure, bool) {
	switch tax {
	case domain.TaxIRPJ, domain.TaxCSLL:
		return declaredComputation(doc, tax, dir)
	}

	var final, apportioned, computed, credits, adjInc, adjDec float64
	found := false
	for _, ap := range doc.Apurations {
		if ap.Tax != tax {
			continue
		}
		found = true
		final += ap.FinalValue
		apportioned += ap.Apportioned
		computed += ap.AdjustedBase * ap.Rate / 100
		credits += ap.TotalCredits
		adjInc += ap.AdjustIncrease
		adjDec += ap.AdjustDecrease
	}
	if !found {
		return domain.TaxFigure{}, false
	}

	if dir == domain.DirectionCredit {
		total := credits
		basis := fmt.Sprintf("créditos declarados na apuração de %s", tax)
		if tax == domain.TaxICMS || tax == domain.TaxIPI {
			total += adjDec
		}
		if tax == domain.TaxPIS || tax == domain.TaxCOFINS {
			total = sumCredits(doc, tax)
			basis = fmt.Sprintf("créditos %s dos registros M100/M500", tax)
		}
		if !plausible(total) {
			return domain.TaxFigure{}, false
		}
		return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceDeclared, Basis: basis}, true
	}

	switch {
	case tax == domain.TaxICMS || tax == domain.TaxIPI:
		// The goods-ledger apuration reports the pre-compensation
		// debit total separately from the balance due.
		if total := apportioned + adjInc; plausible(total) {
			return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceDeclared,
				Basis: fmt.Sprintf("débitos declarados na apuração de %s", tax)}, true
		}
		if plausible(final) {
			return domain.TaxFigure{Value: Round(final, 2), Source: domain.SourceDeclared,
				Basis: fmt.Sprintf("saldo devedor declarado de %s", tax)}, true
		}
	default:
		if plausible(final) {
			return domain.TaxFigure{Value: Round(final, 2), Source: domain.SourceDeclared,
				Basis: fmt.Sprintf("valor do período declarado de %s", tax)}, true
		}
		if plausible(apportioned) {
			return domain.TaxFigure{Value: Round(apportioned, 2), Source: domain.SourceDeclared,
				Basis: fmt.Sprintf("contribuição apurada declarada de %s", tax)}, true
		}
		if plausible(computed) {
			return domain.TaxFigure{Value: Round(computed, 2), Source: domain.SourceDeclared,
				Basis: fmt.Sprintf("alíquota x base ajustada de %s", tax)}, true
		}
	}
	return domain.TaxFigure{}, false
}

// declaredComputation resolves IRPJ/CSLL from the income-tax ledger's
// calculation records (N630/N670).
func declaredComputation(doc *domain.ParsedDocument, tax domain.TaxType, dir domain.Direction) (domain.TaxFigure, bool) {
	if dir == domain.DirectionCredit {
		return domain.TaxFigure{}, false
	}
	var due float64
	source := ""
	for _, comp := range doc.Computations {
		if comp.Tax != tax {
			continue
		}
		if comp.Source == "N630" || comp.Source == "N670" {
			due += comp.Due
			source = comp.Source
		}
	}
	if !plausible(due) {
		return domain.TaxFigure{}, false
	}
	return domain.TaxFigure{Value: Round(due, 2), Source: domain.SourceDeclared,
		Basis: fmt.Sprintf("imposto devido declarado (%s)", source)}, true
}

// alternateFigure reads an older or secondary record layout of the same
// document: M200/M600 totals for the contributions, document-level tax
// sums for the goods ledger, the presumed-profit block for IRPJ/CSLL.
func alternateFigure(doc *domain.ParsedDocument, tax domain.TaxType, dir domain.Direction) (domain.TaxFigure, bool) {
	switch tax {
	case domain.TaxPIS, domain.TaxCOFINS:
		if dir == domain.DirectionDebit {
			var total float64
			for _, debit := range doc.Debits {
				if debit.Tax == tax {
					total += debit.Value
				}
			}
			if plausible(total) {
				return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceAlternate,
					Basis: fmt.Sprintf("totais consolidados %s (M200/M600)", tax)}, true
			}
		}
		if total := sumCredits(doc, tax); dir == domain.DirectionCredit && plausible(total) {
			return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceAlternate,
				Basis: fmt.Sprintf("créditos %s dos registros de crédito", tax)}, true
		}
		if total := sumDocumentTax(doc, tax, dir); plausible(total) {
			return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceAlternate,
				Basis: fmt.Sprintf("%s somado dos documentos", tax)}, true
		}
	case domain.TaxICMS:
		if dir == domain.DirectionDebit {
			var total float64
			for _, sum := range doc.Summaries {
				total += sum.ICMSValue
			}
			if plausible(total) {
				return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceAlternate,
					Basis: "ICMS somado dos registros analíticos C190"}, true
			}
		}
		if total := sumDocumentTax(doc, tax, dir); plausible(total) {
			return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceAlternate,
				Basis: "ICMS somado dos documentos C100"}, true
		}
	case domain.TaxIPI:
		if total := sumDocumentTax(doc, tax, dir); plausible(total) {
			return domain.TaxFigure{Value: Round(total, 2), Source: domain.SourceAlternate,
				Basis: "IPI somado dos documentos"}, true
		}
	case domain.TaxIRPJ, domain.TaxCSLL:
		if dir == domain.DirectionCredit {
			return domain.TaxFigure{}, false
		}
		var due float64
		for _, comp := range doc.Computations {
			if comp.Tax == tax && (comp.Source == "P300" || comp.Source == "P500") {
				due += comp.Due
			}
		}
		if plausible(due) {
			return domain.TaxFigure{Value: Round(due, 2), Source: domain.SourceAlternate,
				Basis: "bloco do lucro presumido (P300/P500)"}, true
		}
	}
	return domain.TaxFigure{}, false
}

// correlatedFigure derives a tax from its statutorily correlated
// partner when the partner resolved through a declared or alternate
// strategy.
func correlatedFigure(figures FigureSet, tax domain.TaxType, dir domain.Direction) (domain.TaxFigure, bool) {
	corr, ok := correlatedTax[tax]
	if !ok {
		return domain.TaxFigure{}, false
	}
	partner := figures.Get(corr.partner, dir)
	if partner.Source == domain.SourceEstimated || !plausible(partner.Value) {
		return domain.TaxFigure{}, false
	}
	value := partner.Value * corr.ratio
	if !plausible(value) {
		return domain.TaxFigure{}, false
	}
	return domain.TaxFigure{
		Value:  Round(value, 2),
		Source: domain.SourceEstimated,
		Basis:  fmt.Sprintf("estimado proporcionalmente a partir de %s (razão %.4f)", corr.partner, corr.ratio),
	}, true
}

// estimatedFigure applies the regime/turnover estimate: revenue times
// the tax's base fraction times the sector or region average rate.
func estimatedFigure(tax domain.TaxType, revenue float64, uf string) (domain.TaxFigure, bool) {
	if !plausible(revenue) {
		return domain.TaxFigure{}, false
	}
	fraction, ok := baseFractionByTax[tax]
	if !ok {
		return domain.TaxFigure{}, false
	}
	var rate float64
	basis := ""
	if tax == domain.TaxICMS {
		rate = ICMSRateForUF(uf)
		basis = fmt.Sprintf("estimado por faturamento (alíquota média %s %.1f%%)", displayUF(uf), rate)
	} else {
		rate = averageRateByTax[tax]
		basis = fmt.Sprintf("estimado por faturamento (alíquota média %.2f%%)", rate)
	}
	value := revenue * fraction * rate / 100
	if !plausible(value) {
		return domain.TaxFigure{}, false
	}
	return domain.TaxFigure{Value: Round(value, 2), Source: domain.SourceEstimated, Basis: basis}, true
}

func displayUF(uf string) string {
	if uf == "" {
		return "nacional"
	}
	return uf
}

func sumCredits(doc *domain.ParsedDocument, tax domain.TaxType) float64 {
	var total float64
	for _, credit := range doc.Credits {
		if credit.Tax == tax {
			total += credit.Value
		}
	}
	return total
}

// sumDocumentTax adds a tax over the transaction documents, outbound
// documents feeding debits and inbound documents feeding credits.
func sumDocumentTax(doc *domain.ParsedDocument, tax domain.TaxType, dir domain.Direction) float64 {
	var total float64
	for _, fd := range doc.Documents {
		if fd.IsOutbound() != (dir == domain.DirectionDebit) {
			continue
		}
		switch tax {
		case domain.TaxICMS:
			total += fd.ICMSValue
		case domain.TaxIPI:
			total += fd.IPIValue
		case domain.TaxPIS:
			total += fd.PISValue
		case domain.TaxCOFINS:
			total += fd.COFINSValue
		}
	}
	return total
}

// EstimateRevenue derives the document's gross revenue for the period
// from the best source its family offers.
func EstimateRevenue(doc *domain.ParsedDocument) float64 {
	var best float64

	// Apuration gross revenue (contributions ledger). PIS and COFINS
	// report the same economic revenue, so take the maximum, never the
	// sum.
	perTax := make(map[domain.TaxType]float64)
	for _, ap := range doc.Apurations {
		perTax[ap.Tax] += ap.GrossRevenue
	}
	for _, v := range perTax {
		if v > best {
			best = v
		}
	}

	// Declared revenue records (Y540, M400/M800).
	var declared float64
	for _, rev := range doc.Revenues {
		declared += rev.Value
	}
	if declared > best {
		best = declared
	}

	// Outbound documents.
	var outbound float64
	for _, fd := range doc.Documents {
		if fd.IsOutbound() {
			outbound += fd.TotalValue
		}
	}
	if outbound > best {
		best = outbound
	}

	// Income-statement revenue lines (ECD J150, ECF L300). Aggregation
	// lines repeat totals across levels; the largest single line is the
	// gross revenue.
	for _, line := range doc.Statements {
		if isRevenueLine(line) && line.Value > best {
			best = line.Value
		}
	}

	if best >= maxPlausibleFigure {
		return 0
	}
	return Round(best, 2)
}

func isRevenueLine(line domain.StatementLine) bool {
	desc := strings.ToUpper(line.Description)
	if !strings.Contains(desc, "RECEITA") {
		return false
	}
	if strings.Contains(desc, "DEDUC") || strings.Contains(desc, "(-)") {
		return false
	}
	return line.Indicator == "" || strings.EqualFold(line.Indicator, "C") || strings.EqualFold(line.Indicator, "R")
}
