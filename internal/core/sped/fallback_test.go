// internal/core/sped/fallback_test.go
package sped

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"extraction-service/internal/domain"
)

func TestResolveFiguresDeclaredWins(t *testing.T) {
	// Declared apuration, alternate totals and documents all present: the
	// declared value must win and the estimators must never fire.
	doc := &domain.ParsedDocument{
		Family: domain.FamilyContributions,
		Apurations: []*domain.ApurationRecord{
			{Tax: domain.TaxPIS, GrossRevenue: 50000, AdjustedBase: 30303.03, Rate: 1.65, Apportioned: 500, FinalValue: 500},
		},
		Debits:  []domain.TaxDebit{{Tax: domain.TaxPIS, Value: 999, Origin: "M200"}},
		Credits: []domain.TaxCredit{{Tax: domain.TaxPIS, Value: 200, Origin: "M100"}},
	}

	figures := ResolveFigures(doc, "SP")

	debit := figures.Get(domain.TaxPIS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceDeclared, debit.Source)
	assert.InDelta(t, 500.0, debit.Value, EPSILON)

	credit := figures.Get(domain.TaxPIS, domain.DirectionCredit)
	assert.Equal(t, domain.SourceDeclared, credit.Source)
	assert.InDelta(t, 200.0, credit.Value, EPSILON)
}

func TestResolveFiguresAlternateLayout(t *testing.T) {
	// No M210 block, only the consolidated M200 totals.
	doc := &domain.ParsedDocument{
		Family: domain.FamilyContributions,
		Debits: []domain.TaxDebit{{Tax: domain.TaxPIS, Value: 650, Origin: "M200"}},
	}

	figures := ResolveFigures(doc, "")

	debit := figures.Get(domain.TaxPIS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceAlternate, debit.Source)
	assert.InDelta(t, 650.0, debit.Value, EPSILON)
	assert.Contains(t, debit.Basis, "M200")
}

func TestResolveFiguresCorrelatedEstimate(t *testing.T) {
	// COFINS has no records of its own; it is derived from the declared
	// PIS figure through the 7.6/1.65 statutory ratio.
	doc := &domain.ParsedDocument{
		Family: domain.FamilyContributions,
		Apurations: []*domain.ApurationRecord{
			{Tax: domain.TaxPIS, Apportioned: 500, FinalValue: 500},
		},
	}

	figures := ResolveFigures(doc, "")

	cofins := figures.Get(domain.TaxCOFINS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceEstimated, cofins.Source)
	assert.InDelta(t, 500*RateCOFINS/RatePIS, cofins.Value, EPSILON)
	assert.Contains(t, cofins.Basis, "PIS")
}

func TestResolveFiguresNeverChainsEstimates(t *testing.T) {
	// Revenue-only document: both contributions resolve through the
	// turnover estimate independently; neither derives from the other's
	// estimate.
	doc := &domain.ParsedDocument{
		Family:   domain.FamilyContributions,
		Revenues: []domain.RevenueRecord{{Value: 50000, Source: "M400"}},
	}

	figures := ResolveFigures(doc, "")

	pis := figures.Get(domain.TaxPIS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceEstimated, pis.Source)
	assert.InDelta(t, 50000*0.80*RatePIS/100, pis.Value, EPSILON)

	cofins := figures.Get(domain.TaxCOFINS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceEstimated, cofins.Source)
	assert.InDelta(t, 50000*0.80*RateCOFINS/100, cofins.Value, EPSILON)
	assert.NotContains(t, cofins.Basis, "PIS", "an estimated figure never feeds the correlated strategy")
}

func TestResolveFiguresFamilyScope(t *testing.T) {
	doc := &domain.ParsedDocument{
		Family: domain.FamilyFiscal,
		Apurations: []*domain.ApurationRecord{
			{Tax: domain.TaxICMS, Apportioned: 8000, TotalCredits: 3000, FinalValue: 5000},
		},
	}

	figures := ResolveFigures(doc, "SP")

	assert.NotContains(t, figures, domain.TaxPIS, "a goods ledger never speaks for the contributions")
	assert.NotContains(t, figures, domain.TaxIRPJ)

	icms := figures.Get(domain.TaxICMS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceDeclared, icms.Source)
	assert.InDelta(t, 8000.0, icms.Value, EPSILON)

	icmsCred := figures.Get(domain.TaxICMS, domain.DirectionCredit)
	assert.Equal(t, domain.SourceDeclared, icmsCred.Source)
	assert.InDelta(t, 3000.0, icmsCred.Value, EPSILON)
}

func TestResolveFiguresNoData(t *testing.T) {
	doc := &domain.ParsedDocument{Family: domain.FamilyContributions}

	figures := ResolveFigures(doc, "")

	pis := figures.Get(domain.TaxPIS, domain.DirectionDebit)
	assert.Zero(t, pis.Value)
	assert.Equal(t, domain.SourceEstimated, pis.Source)
	assert.Equal(t, "sem dados disponíveis", pis.Basis)
}

func TestResolveFiguresImplausibleValues(t *testing.T) {
	doc := &domain.ParsedDocument{
		Family: domain.FamilyContributions,
		Apurations: []*domain.ApurationRecord{
			{Tax: domain.TaxPIS, FinalValue: 2e9},
		},
	}

	figures := ResolveFigures(doc, "")
	pis := figures.Get(domain.TaxPIS, domain.DirectionDebit)
	assert.Zero(t, pis.Value, "values at or above the plausibility bound are discarded")
}

func TestDeclaredComputationECF(t *testing.T) {
	doc := &domain.ParsedDocument{
		Family: domain.FamilyECF,
		Computations: []domain.TaxComputation{
			{Tax: domain.TaxIRPJ, Base: 100000, Due: 15000, Source: "N630"},
			{Tax: domain.TaxCSLL, Base: 100000, Due: 9000, Source: "N670"},
		},
	}

	figures := ResolveFigures(doc, "")

	irpj := figures.Get(domain.TaxIRPJ, domain.DirectionDebit)
	assert.Equal(t, domain.SourceDeclared, irpj.Source)
	assert.InDelta(t, 15000.0, irpj.Value, EPSILON)

	csll := figures.Get(domain.TaxCSLL, domain.DirectionDebit)
	assert.Equal(t, domain.SourceDeclared, csll.Source)
	assert.InDelta(t, 9000.0, csll.Value, EPSILON)
}

func TestEstimatedICMSUsesRegionalRate(t *testing.T) {
	doc := &domain.ParsedDocument{
		Family: domain.FamilyFiscal,
		Documents: []domain.FiscalDocument{
			{Operation: "1", Number: "1", TotalValue: 100000},
		},
	}
	// Outbound documents carry no ICMS value, so the document sum fails
	// and the chain reaches the turnover estimate.
	figures := ResolveFigures(doc, "RJ")

	icms := figures.Get(domain.TaxICMS, domain.DirectionDebit)
	assert.Equal(t, domain.SourceEstimated, icms.Source)
	assert.InDelta(t, 100000*0.60*22.0/100, icms.Value, EPSILON)
	assert.Contains(t, icms.Basis, "RJ")
}

func TestICMSRateForUF(t *testing.T) {
	assert.InDelta(t, 18.0, ICMSRateForUF("SP"), EPSILON)
	assert.InDelta(t, 22.0, ICMSRateForUF("RJ"), EPSILON)
	assert.InDelta(t, 18.0, ICMSRateForUF(""), EPSILON, "unknown state falls back to the national average")
	assert.InDelta(t, 18.0, ICMSRateForUF("XX"), EPSILON)
}

func TestEstimateRevenueTakesMaxNotSum(t *testing.T) {
	doc := &domain.ParsedDocument{
		Family: domain.FamilyContributions,
		Apurations: []*domain.ApurationRecord{
			{Tax: domain.TaxPIS, GrossRevenue: 100000},
			{Tax: domain.TaxCOFINS, GrossRevenue: 100000},
		},
		Documents: []domain.FiscalDocument{
			{Operation: "1", Number: "1", TotalValue: 95000},
		},
	}
	assert.InDelta(t, 100000.0, EstimateRevenue(doc), EPSILON,
		"PIS and COFINS report the same economic revenue")
}

func TestEstimateRevenueFromStatements(t *testing.T) {
	doc := &domain.ParsedDocument{
		Family: domain.FamilyECD,
		Statements: []domain.StatementLine{
			{Description: "RECEITA BRUTA DE VENDAS", Value: 80000, Indicator: "C"},
			{Description: "(-) DEDUCOES DA RECEITA", Value: 500000, Indicator: "D"},
			{Description: "RECEITA LIQUIDA", Value: 75000, Indicator: "C"},
		},
	}
	assert.InDelta(t, 80000.0, EstimateRevenue(doc), EPSILON,
		"deduction lines never count as revenue")
}
