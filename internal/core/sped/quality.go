// internal/core/sped/quality.go
package sped

import (
	"extraction-service/internal/domain"
)

// Sub-score caps of the quality score; they sum to 100.
const (
	completenessCap = 40.0
	consistencyCap  = 25.0
	plausibilityCap = 20.0
	diversityCap    = 15.0
)

// ScoreQuality rates how much the consolidated report can be trusted:
// completeness of the extracted figures, internal consistency of the
// reconciliation checks, plausibility of the derived rates and margins,
// and diversity of the document families that fed it.
func ScoreQuality(report *domain.ConsolidatedReport, docs []*domain.ParsedDocument) domain.QualityScore {
	score := domain.QualityScore{}

	// Completeness: revenue, tax figures and financial data present.
	if report.Financial.GrossRevenue > 0 {
		score.Completeness += 15
	}
	if report.Composition.TotalNetLiability > 0 || len(report.Composition.Taxes) > 0 {
		score.Completeness += 15
	}
	if report.Financial.TotalCost > 0 || report.Financial.NetIncome != 0 {
		score.Completeness += 10
	}

	// Consistency: each unresolved validation failure costs 5 points.
	score.Consistency = consistencyCap
	for _, doc := range docs {
		for _, ap := range doc.Apurations {
			for _, v := range ap.Validations {
				if !v.IsValid {
					score.Consistency -= 5
				}
			}
		}
	}
	if score.Consistency < 0 {
		score.Consistency = 0
	}

	// Plausibility: penalize rates and margins outside sane bounds.
	score.Plausibility = plausibilityCap
	if rate := report.Composition.TotalEffectiveRate; rate > 60 {
		score.Plausibility -= 10
	}
	if m := report.Financial.GrossMargin; m < -1 || m > 1 {
		score.Plausibility -= 5
	}
	if m := report.Financial.NetMargin; m < -1 || m > 1 {
		score.Plausibility -= 5
	}
	if score.Plausibility < 0 {
		score.Plausibility = 0
	}

	// Source diversity: 5 points per distinct family, capped.
	families := make(map[domain.DocumentFamily]bool)
	for _, doc := range docs {
		families[doc.Family] = true
	}
	score.SourceDiversity = float64(len(families)) * 5
	if score.SourceDiversity > diversityCap {
		score.SourceDiversity = diversityCap
	}

	score.Total = score.Completeness + score.Consistency + score.Plausibility + score.SourceDiversity
	switch {
	case score.Total >= 80:
		score.Level = domain.QualityHigh
	case score.Total >= 60:
		score.Level = domain.QualityMedium
	default:
		score.Level = domain.QualityLow
	}

	score.Recommendations = recommendations(score)
	return score
}

// recommendations emits one targeted suggestion per weak sub-score.
func recommendations(score domain.QualityScore) []string {
	var recs []string
	if score.Completeness < completenessCap*0.75 {
		recs = append(recs, "Envie também os arquivos SPED das demais escriturações para completar receita, tributos e dados financeiros")
	}
	if score.Consistency < consistencyCap*0.6 {
		recs = append(recs, "Revise as apurações com divergência entre totais declarados e registros de ajuste")
	}
	if score.Plausibility < plausibilityCap*0.75 {
		recs = append(recs, "Confira receita e carga tributária: os indicadores derivados estão fora das faixas esperadas")
	}
	if score.SourceDiversity < diversityCap {
		recs = append(recs, "Inclua escriturações de outras famílias (fiscal, contribuições, ECF, ECD) para aumentar a confiança do cruzamento")
	}
	return recs
}
