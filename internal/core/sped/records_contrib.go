// internal/core/sped/records_contrib.go
package sped

import (
	"extraction-service/internal/domain"
)

// contributionsSchema is the record table for the EFD Contribuições
// (PIS/COFINS ledger). M210/M610 open an apuration block; M215/M615 and
// M220/M620 are their adjustment children and must follow in file order.
var contributionsSchema = schemaTable{
	"0000": {minFields: 12, decode: decodeContribOpening},
	"0110": {minFields: 4, decode: decode0110},
	"0140": {minFields: 7, decode: decode0140},
	"A100": {minFields: 13, decode: decodeA100},
	"C100": {minFields: 13, decode: decodeC100},
	"C170": {minFields: 12, decode: decodeC170},
	"C180": {minFields: 5, decode: decodeGeneric("C180", domain.KindDetail)},
	"F100": {minFields: 15, decode: decodeF100},
	"M100": {minFields: 9, decode: decodeM100},
	"M105": {minFields: 5, decode: decodeGeneric("M105", domain.KindDetail)},
	"M200": {minFields: 14, decode: decodeM200},
	"M210": {minFields: 17, decode: decodeM210},
	"M215": {minFields: 5, decode: decodeM215},
	"M220": {minFields: 5, decode: decodeM220},
	"M400": {minFields: 4, decode: decodeM400},
	"M500": {minFields: 9, decode: decodeM500},
	"M505": {minFields: 5, decode: decodeGeneric("M505", domain.KindDetail)},
	"M600": {minFields: 14, decode: decodeM600},
	"M610": {minFields: 17, decode: decodeM610},
	"M615": {minFields: 5, decode: decodeM615},
	"M620": {minFields: 5, decode: decodeM620},
	"M800": {minFields: 4, decode: decodeM800},
	"9900": {minFields: 4, decode: decode9900},
}

// decodeContribOpening decodes the EFD Contribuições 0000 record.
// |0000|COD_VER|TIPO_ESCRIT|IND_SIT_ESP|NUM_REC_ANTERIOR|DT_INI|DT_FIN|
// NOME|CNPJ|UF|COD_MUN|SUFRAMA|IND_NAT_PJ|IND_ATIV|
func decodeContribOpening(ctx *decodeContext, f []string) *decoded {
	company := domain.CompanyInfo{
		LayoutVersion: str(f, 2),
		PeriodStart:   str(f, 6),
		PeriodEnd:     str(f, 7),
		Name:          str(f, 8),
		CNPJ:          str(f, 9),
		UF:            str(f, 10),
		CityCode:      str(f, 11),
	}
	if company.Name == "" && company.CNPJ == "" {
		return nil
	}
	return &decoded{kind: domain.KindCompany, entity: company}
}

// decode0110 decodes the contribution regime record.
// |0110|COD_INC_TRIB|IND_APRO_CRED|COD_TIPO_CONT|IND_REG_CUM|
func decode0110(ctx *decodeContext, f []string) *decoded {
	code := str(f, 2)
	if code == "" {
		return nil
	}
	regime := domain.RegimeInfo{
		Code:       code,
		Cumulative: code == "2",
	}
	switch code {
	case "1":
		regime.Description = "Escrituração de operações com incidência exclusivamente no regime não-cumulativo"
	case "2":
		regime.Description = "Escrituração de operações com incidência exclusivamente no regime cumulativo"
	case "3":
		regime.Description = "Escrituração de operações com incidência nos regimes não-cumulativo e cumulativo"
	}
	return &decoded{kind: domain.KindRegime, entity: regime}
}

// decode0140 decodes an establishment record.
// |0140|COD_EST|NOME|CNPJ|UF|IE|COD_MUN|IM|SUFRAMA|
func decode0140(ctx *decodeContext, f []string) *decoded {
	p := domain.Participant{
		Code: str(f, 2),
		Name: str(f, 3),
		CNPJ: str(f, 4),
		UF:   str(f, 5),
	}
	if p.CNPJ == "" && p.Name == "" {
		return nil
	}
	return &decoded{kind: domain.KindParticipant, entity: p}
}

// decodeA100 decodes a service document (NFS-e).
// |A100|IND_OPER|IND_EMIT|COD_PART|COD_SIT|SER|SUB|NUM_DOC|CHV_NFSE|
// DT_DOC|DT_EXE_SERV|VL_DOC|IND_PGTO|VL_DESC|VL_BC_PIS|VL_PIS|
// VL_BC_COFINS|VL_COFINS|VL_PIS_RET|VL_COFINS_RET|VL_ISS|
func decodeA100(ctx *decodeContext, f []string) *decoded {
	doc := domain.FiscalDocument{
		Operation:   str(f, 2),
		Participant: str(f, 4),
		Number:      str(f, 8),
		Key:         str(f, 9),
		IssueDate:   str(f, 10),
		TotalValue:  num(f, 12),
		PISValue:    num(f, 16),
		COFINSValue: num(f, 18),
	}
	if doc.Number == "" && doc.Key == "" {
		return nil
	}
	return &decoded{kind: domain.KindDocument, entity: doc}
}

// decodeF100 decodes "demais documentos e operações".
// |F100|IND_OPER|COD_PART|COD_ITEM|DT_OPER|VL_OPER|CST_PIS|VL_BC_PIS|
// ALIQ_PIS|VL_PIS|CST_COFINS|VL_BC_COFINS|ALIQ_COFINS|VL_COFINS|...
func decodeF100(ctx *decodeContext, f []string) *decoded {
	doc := domain.FiscalDocument{
		Operation:   str(f, 2),
		Participant: str(f, 3),
		Number:      str(f, 4),
		IssueDate:   str(f, 5),
		TotalValue:  num(f, 6),
		PISValue:    num(f, 10),
		COFINSValue: num(f, 14),
	}
	return &decoded{kind: domain.KindDocument, entity: doc}
}

// decodeM100 decodes a PIS credit.
// |M100|COD_CRED|IND_CRED_ORI|VL_BC_PIS|ALIQ_PIS|QUANT_BC_PIS|
// ALIQ_PIS_QUANT|VL_CRED|VL_AJUS_ACRES|VL_AJUS_REDUC|VL_CRED_DIF|
// VL_CRED_DISP|IND_DESC_CRED|VL_CRED_DESC|SLD_CRED|
func decodeM100(ctx *decodeContext, f []string) *decoded {
	return decodeCreditM(f, domain.TaxPIS, "M100")
}

// decodeM500 decodes a COFINS credit with the same shape as M100.
func decodeM500(ctx *decodeContext, f []string) *decoded {
	return decodeCreditM(f, domain.TaxCOFINS, "M500")
}

func decodeCreditM(f []string, tax domain.TaxType, origin string) *decoded {
	credit := domain.TaxCredit{
		Tax:    tax,
		Code:   str(f, 2),
		Base:   num(f, 4),
		Rate:   pct(f, 5),
		Value:  num(f, 8),
		Origin: origin,
	}
	if credit.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindCredit, entity: credit}
}

// decodeM200 decodes the consolidated PIS contribution totals (the
// alternate, pre-M210 layout the fallback chain reads when no apuration
// block is present).
// |M200|VL_TOT_CONT_NC_PER|VL_TOT_CRED_DESC|VL_TOT_CRED_DESC_ANT|
// VL_TOT_CONT_NC_DEV|VL_RET_NC|VL_OUT_DED_NC|VL_CONT_NC_REC|
// VL_TOT_CONT_CUM_PER|VL_RET_CUM|VL_OUT_DED_CUM|VL_CONT_CUM_REC|VL_TOT_CONT_REC|
func decodeM200(ctx *decodeContext, f []string) *decoded {
	return decodeTotalsM(f, domain.TaxPIS, "M200")
}

// decodeM600 decodes the consolidated COFINS totals, same shape as M200.
func decodeM600(ctx *decodeContext, f []string) *decoded {
	return decodeTotalsM(f, domain.TaxCOFINS, "M600")
}

func decodeTotalsM(f []string, tax domain.TaxType, origin string) *decoded {
	value := num(f, 13)
	if value == 0 {
		value = num(f, 2) + num(f, 9)
	}
	debit := domain.TaxDebit{Tax: tax, Value: value, Origin: origin}
	return &decoded{kind: domain.KindDebit, entity: debit}
}

// decodeM210 decodes the PIS apuration aggregate (layout 006+).
// |M210|COD_CONT|VL_REC_BRT|VL_BC_CONT|VL_AJUS_ACRES_BC_PIS|
// VL_AJUS_REDUC_BC_PIS|VL_BC_CONT_AJUS|ALIQ_PIS|QUANT_BC_PIS|
// ALIQ_PIS_QUANT|VL_CONT_APUR|VL_AJUS_ACRES|VL_AJUS_REDUC|VL_CONT_DIFER|
// VL_CONT_DIFER_ANT|VL_CONT_PER|
func decodeM210(ctx *decodeContext, f []string) *decoded {
	return decodeApurationM(ctx, f, domain.TaxPIS)
}

// decodeM610 decodes the COFINS apuration aggregate, same shape as M210.
func decodeM610(ctx *decodeContext, f []string) *decoded {
	return decodeApurationM(ctx, f, domain.TaxCOFINS)
}

func decodeApurationM(ctx *decodeContext, f []string, tax domain.TaxType) *decoded {
	ap := &domain.ApurationRecord{
		Tax:              tax,
		ContributionCode: str(f, 2),
		GrossRevenue:     num(f, 3),
		OriginalBase:     num(f, 4),
		BaseIncrease:     num(f, 5),
		BaseDecrease:     num(f, 6),
		AdjustedBase:     num(f, 7),
		Rate:             pct(f, 8),
		Apportioned:      num(f, 11),
		AdjustIncrease:   num(f, 12),
		AdjustDecrease:   num(f, 13),
		DetailIncrease:   num(f, 12),
		DetailDecrease:   num(f, 13),
		Deferred:         num(f, 14),
		DeferredPrior:    num(f, 15),
		FinalValue:       num(f, 16),
	}
	if ap.ContributionCode == "" {
		return nil
	}
	ctx.recon.SetAggregate(tax, ap)
	return &decoded{kind: domain.KindAggregate, entity: ap}
}

// decodeM215 decodes a PIS contribution-base adjustment detail.
// |M215|IND_AJ_BC|VL_AJ_BC|COD_AJ_BC|NUM_DOC|DESCR_AJ_BC|DT_REF|...
func decodeM215(ctx *decodeContext, f []string) *decoded {
	return decodeAdjustmentM(ctx, f, domain.TaxPIS, true)
}

// decodeM615 decodes a COFINS contribution-base adjustment detail.
func decodeM615(ctx *decodeContext, f []string) *decoded {
	return decodeAdjustmentM(ctx, f, domain.TaxCOFINS, true)
}

// decodeM220 decodes a PIS contribution adjustment detail.
// |M220|IND_AJ|VL_AJ|COD_AJ|NUM_DOC|DESCR_AJ|DT_REF|
func decodeM220(ctx *decodeContext, f []string) *decoded {
	return decodeAdjustmentM(ctx, f, domain.TaxPIS, false)
}

// decodeM620 decodes a COFINS contribution adjustment detail.
func decodeM620(ctx *decodeContext, f []string) *decoded {
	return decodeAdjustmentM(ctx, f, domain.TaxCOFINS, false)
}

// decodeAdjustmentM decodes the shared M-block adjustment shape. The
// direction flag is 0 for acréscimo and 1 for redução.
func decodeAdjustmentM(ctx *decodeContext, f []string, tax domain.TaxType, base bool) *decoded {
	ind := str(f, 2)
	if ind != "0" && ind != "1" {
		return nil
	}
	direction := domain.AdjustIncrease
	if ind == "1" {
		direction = domain.AdjustDecrease
	}
	det := &domain.AdjustmentDetail{
		Tax:            tax,
		Direction:      direction,
		Value:          num(f, 3),
		Code:           str(f, 4),
		Description:    str(f, 6),
		BaseAdjustment: base,
	}
	det.Orphaned = !ctx.recon.Attach(tax, det)
	return &decoded{kind: domain.KindAdjustment, entity: det}
}

// decodeM400 decodes PIS revenue without contribution incidence.
// |M400|CST_PIS|VL_TOT_REC|COD_CTA|DESC_COMPL|
func decodeM400(ctx *decodeContext, f []string) *decoded {
	rev := domain.RevenueRecord{Value: num(f, 3), Source: "M400"}
	return &decoded{kind: domain.KindRevenue, entity: rev}
}

// decodeM800 decodes COFINS revenue without contribution incidence.
func decodeM800(ctx *decodeContext, f []string) *decoded {
	rev := domain.RevenueRecord{Value: num(f, 3), Source: "M800"}
	return &decoded{kind: domain.KindRevenue, entity: rev}
}
