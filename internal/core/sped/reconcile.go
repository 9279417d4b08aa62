// internal/core/sped/reconcile.go
package sped

import (
	"fmt"
	"math"

	"extraction-service/internal/domain"
)

// relativeTolerance is the tolerance of the final-contribution check,
// expressed as a fraction of the declared final value.
const relativeTolerance = 0.01

// ReconciliationContext tracks the "current apuration record" per tax
// type while a document is scanned in file order. One instance lives
// per document parse; it is threaded through every decoder call and is
// never shared across documents.
type ReconciliationContext struct {
	current map[domain.TaxType]*domain.ApurationRecord
}

// NewReconciliationContext creates an empty context.
func NewReconciliationContext() *ReconciliationContext {
	return &ReconciliationContext{
		current: make(map[domain.TaxType]*domain.ApurationRecord),
	}
}

// SetAggregate opens a new apuration block for the tax. It stays
// current until the next aggregate of the same tax or end of document.
func (rc *ReconciliationContext) SetAggregate(tax domain.TaxType, ap *domain.ApurationRecord) {
	rc.current[tax] = ap
}

// Current returns the open apuration block for the tax, if any.
func (rc *ReconciliationContext) Current(tax domain.TaxType) *domain.ApurationRecord {
	return rc.current[tax]
}

// Attach links an adjustment detail to the current aggregate of its tax.
// It reports false when there is no open block, in which case the
// caller must flag the detail as orphaned.
func (rc *ReconciliationContext) Attach(tax domain.TaxType, det *domain.AdjustmentDetail) bool {
	ap, ok := rc.current[tax]
	if !ok || ap == nil {
		return false
	}
	ap.Children = append(ap.Children, det)
	return true
}

// ValidateBaseFormula checks adjusted_base == original_base + increases
// - decreases within an absolute tolerance of 0.01.
func ValidateBaseFormula(ap *domain.ApurationRecord) domain.ValidationOutcome {
	expected := ap.OriginalBase + ap.BaseIncrease - ap.BaseDecrease
	divergence := math.Abs(ap.AdjustedBase - expected)
	return domain.ValidationOutcome{
		IsValid:    divergence <= EPSILON,
		Divergence: Round(divergence, 2),
		Formula:    "base_ajustada = base_original + acrescimos - reducoes",
		Expected:   Round(expected, 2),
		Declared:   ap.AdjustedBase,
	}
}

// ValidateFinalFormula checks final_value == apportioned + increases -
// decreases - deferred + deferred_prior within 1% of the declared final
// value (absolute 0.01 when the final value is zero).
func ValidateFinalFormula(ap *domain.ApurationRecord) domain.ValidationOutcome {
	expected := ap.Apportioned + ap.AdjustIncrease - ap.AdjustDecrease - ap.Deferred + ap.DeferredPrior
	divergence := math.Abs(ap.FinalValue - expected)
	tolerance := math.Abs(ap.FinalValue) * relativeTolerance
	if tolerance < EPSILON {
		tolerance = EPSILON
	}
	return domain.ValidationOutcome{
		IsValid:    divergence <= tolerance,
		Divergence: Round(divergence, 2),
		Formula:    "valor_final = contribuicao_apurada + acrescimos - reducoes - diferido + diferido_anterior",
		Expected:   Round(expected, 2),
		Declared:   ap.FinalValue,
	}
}

// ValidateChildSums checks that the sum of the attached adjustment
// details matches the aggregate's own declared adjustment totals, per
// direction, within an absolute tolerance of 0.01. Base adjustments
// (M215/M615) are compared against the base totals; contribution
// adjustments (M220/M620, E111, E530) against the itemizable detail
// totals — not the full AdjustIncrease/AdjustDecrease, which for the
// ICMS apuration also fold in document adjustments and reversals the
// E111 children never itemize.
func ValidateChildSums(ap *domain.ApurationRecord) []domain.ValidationOutcome {
	var baseInc, baseDec, contInc, contDec float64
	var hasBase, hasCont bool
	for _, child := range ap.Children {
		if child.BaseAdjustment {
			hasBase = true
			if child.Direction == domain.AdjustIncrease {
				baseInc += child.Value
			} else {
				baseDec += child.Value
			}
		} else {
			hasCont = true
			if child.Direction == domain.AdjustIncrease {
				contInc += child.Value
			} else {
				contDec += child.Value
			}
		}
	}

	var outcomes []domain.ValidationOutcome
	if hasBase {
		outcomes = append(outcomes,
			childSumOutcome("soma_detalhes_acrescimo_base", baseInc, ap.BaseIncrease),
			childSumOutcome("soma_detalhes_reducao_base", baseDec, ap.BaseDecrease),
		)
	}
	if hasCont {
		outcomes = append(outcomes,
			childSumOutcome("soma_detalhes_acrescimo", contInc, ap.DetailIncrease),
			childSumOutcome("soma_detalhes_reducao", contDec, ap.DetailDecrease),
		)
	}
	return outcomes
}

func childSumOutcome(formula string, computed, declared float64) domain.ValidationOutcome {
	divergence := math.Abs(computed - declared)
	return domain.ValidationOutcome{
		IsValid:    divergence <= EPSILON,
		Divergence: Round(divergence, 2),
		Formula:    formula + " = total_declarado",
		Expected:   Round(computed, 2),
		Declared:   Round(declared, 2),
	}
}

// ReconcileDocument runs the formula checks over every apuration block
// of a parsed document, attaching the outcomes to each aggregate. A
// failed check never aborts processing; it only degrades the quality
// score and surfaces as an observation later.
func ReconcileDocument(doc *domain.ParsedDocument) {
	for _, ap := range doc.Apurations {
		if ap.Tax == domain.TaxPIS || ap.Tax == domain.TaxCOFINS {
			ap.Validations = append(ap.Validations, ValidateBaseFormula(ap))
			ap.Validations = append(ap.Validations, ValidateFinalFormula(ap))
		}
		if len(ap.Children) > 0 {
			ap.Validations = append(ap.Validations, ValidateChildSums(ap)...)
		}
	}
}

// ValidationObservations renders the failed checks of a document as
// human-readable observation strings.
func ValidationObservations(doc *domain.ParsedDocument) []string {
	var obs []string
	for _, ap := range doc.Apurations {
		for _, v := range ap.Validations {
			if v.IsValid {
				continue
			}
			obs = append(obs, fmt.Sprintf(
				"Inconsistência %s (%s): esperado %.2f, declarado %.2f, divergência %.2f",
				ap.Tax, v.Formula, v.Expected, v.Declared, v.Divergence))
		}
	}
	for _, det := range doc.Adjustments {
		if det.Orphaned {
			obs = append(obs, fmt.Sprintf(
				"Registro de ajuste %s sem apuração correspondente (valor %.2f)", det.Tax, det.Value))
			break
		}
	}
	return obs
}
