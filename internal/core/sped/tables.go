// internal/core/sped/tables.go
package sped

import (
	"extraction-service/internal/domain"
)

// Statutory non-cumulative contribution rates, used for the
// correlated-tax proportional estimates (COFINS/PIS = 7.6/1.65) and
// for rate-times-base fallbacks.
const (
	RatePIS    = 1.65
	RateCOFINS = 7.6
	RateIRPJ   = 15.0
	RateCSLL   = 9.0
	RateIPIAvg = 10.0
)

// DefaultTargetRate is the reference IVA-dual (CBS + IBS) rate applied
// by the transition projection when none is provided.
const DefaultTargetRate = 26.5

// icmsRateByUF holds the standard internal ICMS rate per state, used by
// the regime/turnover estimate for the region-sensitive tax.
var icmsRateByUF = map[string]float64{
	"AC": 19.0, "AL": 19.0, "AM": 20.0, "AP": 18.0, "BA": 20.5,
	"CE": 20.0, "DF": 20.0, "ES": 17.0, "GO": 19.0, "MA": 22.0,
	"MG": 18.0, "MS": 17.0, "MT": 17.0, "PA": 19.0, "PB": 20.0,
	"PE": 20.5, "PI": 21.0, "PR": 19.5, "RJ": 22.0, "RN": 18.0,
	"RO": 19.5, "RR": 20.0, "RS": 17.0, "SC": 17.0, "SE": 19.0,
	"SP": 18.0, "TO": 20.0,
}

// icmsRateNational is used when the state is unknown.
const icmsRateNational = 18.0

// ICMSRateForUF returns the standard internal ICMS rate of a state,
// falling back to the national average.
func ICMSRateForUF(uf string) float64 {
	if rate, ok := icmsRateByUF[uf]; ok {
		return rate
	}
	return icmsRateNational
}

// baseFractionByTax is the fraction of gross revenue assumed to form
// each tax's calculation base in the regime/turnover estimate. IRPJ and
// CSLL use the presumed-profit fractions for commerce.
var baseFractionByTax = map[domain.TaxType]float64{
	domain.TaxICMS:   0.60,
	domain.TaxIPI:    0.30,
	domain.TaxPIS:    0.80,
	domain.TaxCOFINS: 0.80,
	domain.TaxIRPJ:   0.08,
	domain.TaxCSLL:   0.12,
}

// averageRateByTax is the national average rate applied by the
// regime/turnover estimate for the non region-sensitive taxes.
var averageRateByTax = map[domain.TaxType]float64{
	domain.TaxIPI:    RateIPIAvg,
	domain.TaxPIS:    RatePIS,
	domain.TaxCOFINS: RateCOFINS,
	domain.TaxIRPJ:   RateIRPJ,
	domain.TaxCSLL:   RateCSLL,
}

// correlatedTax maps each tax to the statutorily correlated tax the
// proportional estimate derives it from, with the multiplying ratio.
var correlatedTax = map[domain.TaxType]struct {
	partner domain.TaxType
	ratio   float64
}{
	domain.TaxPIS:    {domain.TaxCOFINS, RatePIS / RateCOFINS},
	domain.TaxCOFINS: {domain.TaxPIS, RateCOFINS / RatePIS},
	domain.TaxIRPJ:   {domain.TaxCSLL, RateIRPJ / RateCSLL},
	domain.TaxCSLL:   {domain.TaxIRPJ, RateCSLL / RateIRPJ},
}

// transitionSchedule is the fixed statutory schedule of the tax reform
// transition: per year, the weight of the current regime and of the
// IVA-dual target regime.
var transitionSchedule = []struct {
	year          int
	currentWeight float64
	targetWeight  float64
}{
	{2026, 1.00, 0.00},
	{2027, 0.95, 0.05},
	{2028, 0.95, 0.05},
	{2029, 0.90, 0.10},
	{2030, 0.80, 0.20},
	{2031, 0.70, 0.30},
	{2032, 0.60, 0.40},
	{2033, 0.00, 1.00},
}
