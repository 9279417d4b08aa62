// internal/core/sped/records_fiscal.go
package sped

import (
	"extraction-service/internal/domain"
)

// fiscalSchema is the record table for the EFD ICMS/IPI (merchandise
// ledger). Field offsets follow the published Guia Prático layout;
// parts[0] is always empty and parts[1] is the record code.
var fiscalSchema = schemaTable{
	"0000": {minFields: 12, decode: decodeFiscalOpening},
	"0005": {minFields: 3, decode: decodeGeneric("0005", domain.KindDetail)},
	"0100": {minFields: 3, decode: decodeGeneric("0100", domain.KindDetail)},
	"0150": {minFields: 8, decode: decodeParticipant},
	"C100": {minFields: 13, decode: decodeC100},
	"C170": {minFields: 12, decode: decodeC170},
	"C190": {minFields: 8, decode: decodeC190},
	"D100": {minFields: 16, decode: decodeD100},
	"E100": {minFields: 4, decode: decodePeriod},
	"E110": {minFields: 14, decode: decodeE110},
	"E111": {minFields: 5, decode: decodeE111},
	"E200": {minFields: 5, decode: decodeGeneric("E200", domain.KindDetail)},
	"E210": {minFields: 4, decode: decodeGeneric("E210", domain.KindDetail)},
	"E500": {minFields: 5, decode: decodePeriod},
	"E510": {minFields: 4, decode: decodeGeneric("E510", domain.KindDetail)},
	"E520": {minFields: 9, decode: decodeE520},
	"E530": {minFields: 6, decode: decodeE530},
	"H005": {minFields: 4, decode: decodeH005},
	"H010": {minFields: 7, decode: decodeGeneric("H010", domain.KindDetail)},
	"9900": {minFields: 4, decode: decode9900},
}

// decodeFiscalOpening decodes the EFD ICMS/IPI 0000 record.
// |0000|COD_VER|COD_FIN|DT_INI|DT_FIN|NOME|CNPJ|CPF|UF|IE|COD_MUN|IM|...
func decodeFiscalOpening(ctx *decodeContext, f []string) *decoded {
	company := domain.CompanyInfo{
		LayoutVersion: str(f, 2),
		PeriodStart:   str(f, 4),
		PeriodEnd:     str(f, 5),
		Name:          str(f, 6),
		CNPJ:          str(f, 7),
		UF:            str(f, 9),
		IE:            str(f, 10),
		CityCode:      str(f, 11),
	}
	if company.Name == "" && company.CNPJ == "" {
		return nil
	}
	return &decoded{kind: domain.KindCompany, entity: company}
}

// decodeParticipant decodes the 0150 trading-partner record.
// |0150|COD_PART|NOME|COD_PAIS|CNPJ|CPF|IE|COD_MUN|...
func decodeParticipant(ctx *decodeContext, f []string) *decoded {
	p := domain.Participant{
		Code: str(f, 2),
		Name: str(f, 3),
		CNPJ: str(f, 5),
	}
	if p.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindParticipant, entity: p}
}

// decodeC100 decodes a goods transaction document.
// |C100|IND_OPER|IND_EMIT|COD_PART|COD_MOD|COD_SIT|SER|NUM_DOC|CHV_NFE|
// DT_DOC|DT_E_S|VL_DOC|IND_PGTO|VL_DESC|VL_ABAT_NT|VL_MERC|IND_FRT|VL_FRT|
// VL_SEG|VL_OUT_DA|VL_BC_ICMS|VL_ICMS|VL_BC_ICMS_ST|VL_ICMS_ST|VL_IPI|VL_PIS|VL_COFINS|...
func decodeC100(ctx *decodeContext, f []string) *decoded {
	doc := domain.FiscalDocument{
		Operation:   str(f, 2),
		Participant: str(f, 4),
		Model:       str(f, 5),
		Number:      str(f, 8),
		Key:         str(f, 9),
		IssueDate:   str(f, 10),
		TotalValue:  num(f, 12),
		ICMSBase:    num(f, 21),
		ICMSValue:   num(f, 22),
		STValue:     num(f, 24),
		IPIValue:    num(f, 25),
		PISValue:    num(f, 26),
		COFINSValue: num(f, 27),
	}
	if doc.Number == "" && doc.Key == "" {
		return nil
	}
	return &decoded{kind: domain.KindDocument, entity: doc}
}

// decodeC170 decodes an item line of a C100 document.
// |C170|NUM_ITEM|COD_ITEM|DESCR_COMPL|QTD|UNID|VL_ITEM|VL_DESC|IND_MOV|
// CST_ICMS|CFOP|COD_NAT|VL_BC_ICMS|ALIQ_ICMS|VL_ICMS|VL_BC_ICMS_ST|
// ALIQ_ST|VL_ICMS_ST|IND_APUR|CST_IPI|COD_ENQ|VL_BC_IPI|ALIQ_IPI|VL_IPI|...
func decodeC170(ctx *decodeContext, f []string) *decoded {
	item := domain.LineItem{
		ItemNumber: str(f, 2),
		ItemCode:   str(f, 3),
		Value:      num(f, 7),
		CST:        str(f, 10),
		CFOP:       str(f, 11),
		ICMSBase:   num(f, 13),
		ICMSRate:   pct(f, 14),
		ICMSValue:  num(f, 15),
		STValue:    num(f, 18),
		IPIValue:   num(f, 24),
	}
	if item.ItemNumber == "" {
		return nil
	}
	return &decoded{kind: domain.KindLineItem, entity: item}
}

// decodeC190 decodes the CST/CFOP/rate analytic summary of a document.
// |C190|CST_ICMS|CFOP|ALIQ_ICMS|VL_OPR|VL_BC_ICMS|VL_ICMS|VL_BC_ICMS_ST|
// VL_ICMS_ST|VL_RED_BC|VL_IPI|COD_OBS|
func decodeC190(ctx *decodeContext, f []string) *decoded {
	sum := domain.TaxSummary{
		CST:       str(f, 2),
		CFOP:      str(f, 3),
		Rate:      pct(f, 4),
		OprValue:  num(f, 5),
		ICMSBase:  num(f, 6),
		ICMSValue: num(f, 7),
		STValue:   num(f, 9),
		IPIValue:  num(f, 11),
	}
	if sum.CFOP == "" {
		return nil
	}
	return &decoded{kind: domain.KindSummary, entity: sum}
}

// decodeD100 decodes a transport document (CT-e).
// |D100|IND_OPER|IND_EMIT|COD_PART|COD_MOD|COD_SIT|SER|SUB|NUM_DOC|CHV_CTE|
// DT_DOC|DT_A_P|TP_CTE|CHV_CTE_REF|VL_DOC|VL_DESC|IND_FRT|VL_SERV|
// VL_BC_ICMS|VL_ICMS|VL_NT|COD_INF|COD_CTA|
func decodeD100(ctx *decodeContext, f []string) *decoded {
	doc := domain.FiscalDocument{
		Operation:   str(f, 2),
		Participant: str(f, 4),
		Model:       str(f, 5),
		Number:      str(f, 9),
		Key:         str(f, 10),
		IssueDate:   str(f, 11),
		TotalValue:  num(f, 15),
		ICMSBase:    num(f, 19),
		ICMSValue:   num(f, 20),
	}
	if doc.Number == "" && doc.Key == "" {
		return nil
	}
	return &decoded{kind: domain.KindDocument, entity: doc}
}

// decodePeriod decodes an apuration period opener (E100, E500, I150).
func decodePeriod(ctx *decodeContext, f []string) *decoded {
	g := domain.GenericRecord{TypeCode: str(f, 1), Fields: append([]string(nil), f...)}
	return &decoded{kind: domain.KindPeriod, entity: g}
}

// decodeE110 decodes the monthly ICMS apuration aggregate.
// |E110|VL_TOT_DEBITOS|VL_AJ_DEBITOS|VL_TOT_AJ_DEBITOS|VL_ESTORNOS_CRED|
// VL_TOT_CREDITOS|VL_AJ_CREDITOS|VL_TOT_AJ_CREDITOS|VL_ESTORNOS_DEB|
// VL_SLD_CREDOR_ANT|VL_SLD_APURADO|VL_TOT_DED|VL_ICMS_RECOLHER|
// VL_SLD_CREDOR_TRANSPORTAR|DEB_ESP|
func decodeE110(ctx *decodeContext, f []string) *decoded {
	ap := &domain.ApurationRecord{
		Tax:            domain.TaxICMS,
		Apportioned:    num(f, 2),
		AdjustIncrease: num(f, 3) + num(f, 4) + num(f, 5),
		TotalCredits:   num(f, 6),
		AdjustDecrease: num(f, 7) + num(f, 8) + num(f, 9),
		// E111 details itemize only the VL_TOT_AJ_* fields.
		DetailIncrease: num(f, 4),
		DetailDecrease: num(f, 8),
		Deferred:       num(f, 12),
		FinalValue:     num(f, 13),
	}
	ctx.recon.SetAggregate(domain.TaxICMS, ap)
	return &decoded{kind: domain.KindAggregate, entity: ap}
}

// decodeE111 decodes an ICMS apuration adjustment. The third character
// of COD_AJ_APUR classifies the adjustment: 0/1 raise the balance due,
// 2/3/4 lower it.
// |E111|COD_AJ_APUR|DESCR_COMPL_AJ|VL_AJ_APUR|
func decodeE111(ctx *decodeContext, f []string) *decoded {
	code := str(f, 2)
	if code == "" {
		return nil
	}
	direction := domain.AdjustIncrease
	if len(code) >= 3 {
		switch code[2] {
		case '2', '3', '4':
			direction = domain.AdjustDecrease
		}
	}
	det := &domain.AdjustmentDetail{
		Tax:         domain.TaxICMS,
		Direction:   direction,
		Code:        code,
		Description: str(f, 3),
		Value:       num(f, 4),
	}
	det.Orphaned = !ctx.recon.Attach(domain.TaxICMS, det)
	return &decoded{kind: domain.KindAdjustment, entity: det}
}

// decodeE520 decodes the IPI apuration aggregate.
// |E520|VL_SD_ANT_IPI|VL_DEB_IPI|VL_CRED_IPI|VL_OD_IPI|VL_OC_IPI|
// VL_SC_IPI|VL_SD_IPI|
func decodeE520(ctx *decodeContext, f []string) *decoded {
	ap := &domain.ApurationRecord{
		Tax:            domain.TaxIPI,
		Apportioned:    num(f, 3),
		TotalCredits:   num(f, 4),
		AdjustIncrease: num(f, 5),
		AdjustDecrease: num(f, 6),
		DetailIncrease: num(f, 5),
		DetailDecrease: num(f, 6),
		FinalValue:     num(f, 8),
	}
	ctx.recon.SetAggregate(domain.TaxIPI, ap)
	return &decoded{kind: domain.KindAggregate, entity: ap}
}

// decodeE530 decodes an IPI apuration adjustment.
// |E530|IND_AJ|VL_AJ|COD_AJ|IND_DOC|NUM_DOC|DESCR_AJ|
func decodeE530(ctx *decodeContext, f []string) *decoded {
	direction := domain.AdjustIncrease
	if str(f, 2) == "1" {
		direction = domain.AdjustDecrease
	}
	det := &domain.AdjustmentDetail{
		Tax:         domain.TaxIPI,
		Direction:   direction,
		Value:       num(f, 3),
		Code:        str(f, 4),
		Description: str(f, 7),
	}
	det.Orphaned = !ctx.recon.Attach(domain.TaxIPI, det)
	return &decoded{kind: domain.KindAdjustment, entity: det}
}

// decodeH005 decodes the physical inventory total.
// |H005|DT_INV|VL_INV|MOT_INV|
func decodeH005(ctx *decodeContext, f []string) *decoded {
	inv := domain.InventoryRecord{
		Date:       str(f, 2),
		TotalValue: num(f, 3),
		Reason:     str(f, 4),
	}
	return &decoded{kind: domain.KindInventory, entity: inv}
}

// decode9900 decodes the closing-block record tally.
// |9900|REG_BLC|QTD_REG_BLC|
func decode9900(ctx *decodeContext, f []string) *decoded {
	count := domain.RecordCount{
		TypeCode: str(f, 2),
		Count:    int(num(f, 3)),
	}
	if count.TypeCode == "" {
		return nil
	}
	return &decoded{kind: domain.KindTotal, entity: count}
}

// decodeGeneric keeps a recognized record whose payload has no dedicated
// bucket, preserving its raw fields under the type code.
func decodeGeneric(code string, kind domain.RecordKind) decodeFunc {
	return func(ctx *decodeContext, f []string) *decoded {
		g := domain.GenericRecord{TypeCode: code, Fields: append([]string(nil), f...)}
		return &decoded{kind: kind, entity: g}
	}
}
