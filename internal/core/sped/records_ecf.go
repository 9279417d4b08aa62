// internal/core/sped/records_ecf.go
package sped

import (
	"extraction-service/internal/domain"
)

// ecfSchema is the record table for the ECF (corporate income tax
// ledger). The N-block offsets for less common layouts were derived
// from the published record tables; P300/P500 carry a single amount.
var ecfSchema = schemaTable{
	"0000": {minFields: 12, decode: decodeECFOpening},
	"0010": {minFields: 6, decode: decode0010},
	"J050": {minFields: 9, decode: decodeJ050},
	"L300": {minFields: 9, decode: decodeL300},
	"N500": {minFields: 4, decode: decodeGeneric("N500", domain.KindDetail)},
	"N620": {minFields: 4, decode: decodeGeneric("N620", domain.KindDetail)},
	"N630": {minFields: 5, decode: decodeN630},
	"N660": {minFields: 4, decode: decodeGeneric("N660", domain.KindDetail)},
	"N670": {minFields: 5, decode: decodeN670},
	"P200": {minFields: 4, decode: decodeP200},
	"P300": {minFields: 3, decode: decodeP300},
	"P400": {minFields: 4, decode: decodeP400},
	"P500": {minFields: 3, decode: decodeP500},
	"Y540": {minFields: 4, decode: decodeY540},
	"9900": {minFields: 4, decode: decode9900},
}

// decodeECFOpening decodes the ECF 0000 record.
// |0000|LECF|COD_VER|CNPJ|NOME|IND_SIT_INI_PER|SIT_ESPECIAL|
// PAT_REMAN_CIS|DT_SIT_ESP|DT_INI|DT_FIN|RETIFICADORA|...
func decodeECFOpening(ctx *decodeContext, f []string) *decoded {
	company := domain.CompanyInfo{
		LayoutVersion: str(f, 3),
		CNPJ:          str(f, 4),
		Name:          str(f, 5),
		PeriodStart:   str(f, 10),
		PeriodEnd:     str(f, 11),
	}
	if company.Name == "" && company.CNPJ == "" {
		return nil
	}
	return &decoded{kind: domain.KindCompany, entity: company}
}

// decode0010 decodes the ECF taxation-form parameters.
// |0010|HASH_ECF_ANTERIOR|OPT_REFIS|OPT_PAES|FORMA_TRIB|FORMA_APUR|...
func decode0010(ctx *decodeContext, f []string) *decoded {
	code := str(f, 5)
	if code == "" {
		return nil
	}
	regime := domain.RegimeInfo{Code: code}
	switch code {
	case "1":
		regime.Description = "Lucro Real"
	case "2":
		regime.Description = "Lucro Real/Arbitrado"
	case "3":
		regime.Description = "Lucro Presumido/Real"
	case "5", "7":
		regime.Description = "Lucro Presumido"
	case "8", "9":
		regime.Description = "Lucro Arbitrado"
	}
	return &decoded{kind: domain.KindRegime, entity: regime}
}

// decodeJ050 decodes an ECF chart-of-accounts entry, same shape as the
// ECD I050 record.
// |J050|DT_ALT|COD_NAT|IND_CTA|NIVEL|COD_CTA|COD_CTA_SUP|CTA|
func decodeJ050(ctx *decodeContext, f []string) *decoded {
	return decodeChartAccount(f)
}

// decodeL300 decodes an income-statement line of the Lucro Real block.
// |L300|CODIGO|DESCRICAO|TIPO|NIVEL|COD_NAT|COD_CTA_SUP|VALOR|
func decodeL300(ctx *decodeContext, f []string) *decoded {
	line := domain.StatementLine{
		Code:        str(f, 2),
		Description: str(f, 3),
		Level:       str(f, 5),
		Value:       num(f, 8),
		Source:      "L300",
	}
	if line.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindStatement, entity: line}
}

// decodeN630 decodes the IRPJ due calculation.
func decodeN630(ctx *decodeContext, f []string) *decoded {
	return decodeComputationN(f, domain.TaxIRPJ, "N630")
}

// decodeN670 decodes the CSLL due calculation, same shape as N630.
func decodeN670(ctx *decodeContext, f []string) *decoded {
	return decodeComputationN(f, domain.TaxCSLL, "N670")
}

// decodeComputationN reads the N-block calculation rows: base at field
// 2, statutory rate at 3, amount due at 4.
func decodeComputationN(f []string, tax domain.TaxType, source string) *decoded {
	comp := domain.TaxComputation{
		Tax:    tax,
		Base:   num(f, 2),
		Due:    num(f, 4),
		Source: source,
	}
	if comp.Due == 0 && comp.Base == 0 {
		return nil
	}
	return &decoded{kind: domain.KindComputation, entity: comp}
}

// decodeP200 decodes the presumed-profit IRPJ base.
// |P200|CODIGO|DESCRICAO|VALOR|
func decodeP200(ctx *decodeContext, f []string) *decoded {
	line := domain.StatementLine{
		Code:        str(f, 2),
		Description: str(f, 3),
		Value:       num(f, 4),
		Source:      "P200",
	}
	if line.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindStatement, entity: line}
}

// decodeP300 decodes the presumed-profit IRPJ due (single amount).
// |P300|VALOR|
func decodeP300(ctx *decodeContext, f []string) *decoded {
	comp := domain.TaxComputation{Tax: domain.TaxIRPJ, Due: num(f, 2), Source: "P300"}
	return &decoded{kind: domain.KindComputation, entity: comp}
}

// decodeP400 decodes the presumed-profit CSLL base, same shape as P200.
func decodeP400(ctx *decodeContext, f []string) *decoded {
	line := domain.StatementLine{
		Code:        str(f, 2),
		Description: str(f, 3),
		Value:       num(f, 4),
		Source:      "P400",
	}
	if line.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindStatement, entity: line}
}

// decodeP500 decodes the presumed-profit CSLL due (single amount).
func decodeP500(ctx *decodeContext, f []string) *decoded {
	comp := domain.TaxComputation{Tax: domain.TaxCSLL, Due: num(f, 2), Source: "P500"}
	return &decoded{kind: domain.KindComputation, entity: comp}
}

// decodeY540 decodes per-establishment gross revenue.
// |Y540|CNPJ_ESTAB|VL_REC_BRUTA|CNAE|
func decodeY540(ctx *decodeContext, f []string) *decoded {
	rev := domain.RevenueRecord{
		Value:  num(f, 3),
		CNAE:   str(f, 4),
		Source: "Y540",
	}
	if rev.Value == 0 {
		return nil
	}
	return &decoded{kind: domain.KindRevenue, entity: rev}
}
