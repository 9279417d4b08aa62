// internal/core/sped/records_ecd.go
package sped

import (
	"extraction-service/internal/domain"
)

// ecdSchema is the record table for the ECD (general accounting ledger).
var ecdSchema = schemaTable{
	"0000": {minFields: 8, decode: decodeECDOpening},
	"I010": {minFields: 4, decode: decodeGeneric("I010", domain.KindDetail)},
	"I050": {minFields: 9, decode: decodeI050},
	"I150": {minFields: 4, decode: decodePeriod},
	"I155": {minFields: 10, decode: decodeI155},
	"I200": {minFields: 6, decode: decodeGeneric("I200", domain.KindDetail)},
	"I250": {minFields: 8, decode: decodeGeneric("I250", domain.KindDetail)},
	"J100": {minFields: 10, decode: decodeJ100},
	"J150": {minFields: 9, decode: decodeJ150},
	"9900": {minFields: 4, decode: decode9900},
}

// decodeECDOpening decodes the ECD 0000 record.
// |0000|LECD|DT_INI|DT_FIN|NOME|CNPJ|UF|IE|COD_MUN|IM|IND_SIT_ESP|...
func decodeECDOpening(ctx *decodeContext, f []string) *decoded {
	company := domain.CompanyInfo{
		PeriodStart: str(f, 3),
		PeriodEnd:   str(f, 4),
		Name:        str(f, 5),
		CNPJ:        str(f, 6),
		UF:          str(f, 7),
		IE:          str(f, 8),
		CityCode:    str(f, 9),
	}
	if company.Name == "" && company.CNPJ == "" {
		return nil
	}
	return &decoded{kind: domain.KindCompany, entity: company}
}

// decodeI050 decodes a chart-of-accounts entry.
// |I050|DT_ALT|COD_NAT|IND_CTA|NIVEL|COD_CTA|COD_CTA_SUP|CTA|
func decodeI050(ctx *decodeContext, f []string) *decoded {
	return decodeChartAccount(f)
}

// decodeChartAccount reads the shared I050/J050 account shape.
func decodeChartAccount(f []string) *decoded {
	acc := domain.Account{
		Nature: str(f, 3),
		Kind:   str(f, 4),
		Level:  str(f, 5),
		Code:   str(f, 6),
		Name:   str(f, 8),
	}
	if acc.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindAccount, entity: acc}
}

// decodeI155 decodes a periodic account balance.
// |I155|COD_CTA|COD_CCUS|VL_SLD_INI|IND_DC_INI|VL_DEB|VL_CRED|
// VL_SLD_FIN|IND_DC_FIN|
func decodeI155(ctx *decodeContext, f []string) *decoded {
	bal := domain.AccountBalance{
		AccountCode: str(f, 2),
		Opening:     num(f, 4),
		OpeningInd:  str(f, 5),
		Debits:      num(f, 6),
		Credits:     num(f, 7),
		Closing:     num(f, 8),
		ClosingInd:  str(f, 9),
	}
	if bal.AccountCode == "" {
		return nil
	}
	return &decoded{kind: domain.KindBalance, entity: bal}
}

// decodeJ100 decodes a balance-sheet aggregation line.
// |J100|COD_AGL|IND_COD_AGL|NIVEL_AGL|COD_AGL_SUP|IND_GRP_BAL|
// DESCR_COD_AGL|VL_CTA|IND_DC_CTA|...
func decodeJ100(ctx *decodeContext, f []string) *decoded {
	line := domain.StatementLine{
		Code:        str(f, 2),
		Level:       str(f, 4),
		Description: str(f, 7),
		Value:       num(f, 8),
		Indicator:   str(f, 9),
		Source:      "J100",
	}
	if line.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindStatement, entity: line}
}

// decodeJ150 decodes an income-statement (DRE) aggregation line.
// |J150|COD_AGL|IND_COD_AGL|NIVEL_AGL|COD_AGL_SUP|DESCR_COD_AGL|
// VL_CTA|IND_VL_CTA|...
func decodeJ150(ctx *decodeContext, f []string) *decoded {
	line := domain.StatementLine{
		Code:        str(f, 2),
		Level:       str(f, 4),
		Description: str(f, 6),
		Value:       num(f, 7),
		Indicator:   str(f, 8),
		Source:      "J150",
	}
	if line.Code == "" {
		return nil
	}
	return &decoded{kind: domain.KindStatement, entity: line}
}
