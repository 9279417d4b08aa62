// package domain/models.go
package domain

// DocumentFamily identifies which SPED bookkeeping file a document belongs to.
type DocumentFamily string

// Constants for the four supported SPED families.
const (
	FamilyFiscal        DocumentFamily = "EFD_ICMS_IPI"
	FamilyContributions DocumentFamily = "EFD_CONTRIBUICOES"
	FamilyECF           DocumentFamily = "ECF"
	FamilyECD           DocumentFamily = "ECD"
)

// FamilyPriority lists the families in the order company data is trusted.
var FamilyPriority = []DocumentFamily{
	FamilyFiscal,
	FamilyContributions,
	FamilyECF,
	FamilyECD,
}

// TaxType identifies a Brazilian tax handled by the extraction engine.
type TaxType string

// Constants for the supported tax types.
const (
	TaxICMS   TaxType = "ICMS"
	TaxIPI    TaxType = "IPI"
	TaxPIS    TaxType = "PIS"
	TaxCOFINS TaxType = "COFINS"
	TaxIRPJ   TaxType = "IRPJ"
	TaxCSLL   TaxType = "CSLL"
)

// AllTaxTypes lists every tax the fallback chain resolves.
var AllTaxTypes = []TaxType{TaxICMS, TaxIPI, TaxPIS, TaxCOFINS, TaxIRPJ, TaxCSLL}

// Direction distinguishes amounts that raise tax due from amounts that reduce it.
type Direction string

// Constants for figure directions.
const (
	DirectionDebit  Direction = "debito"
	DirectionCredit Direction = "credito"
)

// RecordKind tags a decoded entity so the dispatch engine can route it.
type RecordKind string

// Constants for the semantic kinds produced by record decoders.
const (
	KindCompany     RecordKind = "company"
	KindRegime      RecordKind = "regime"
	KindParticipant RecordKind = "participant"
	KindPeriod      RecordKind = "period"
	KindDocument    RecordKind = "document"
	KindLineItem    RecordKind = "line-item"
	KindSummary     RecordKind = "summary"
	KindCredit      RecordKind = "credit"
	KindDebit       RecordKind = "debit"
	KindAggregate   RecordKind = "aggregate"
	KindAdjustment  RecordKind = "adjustment"
	KindInventory   RecordKind = "inventory"
	KindAccount     RecordKind = "account"
	KindBalance     RecordKind = "balance"
	KindStatement   RecordKind = "statement"
	KindComputation RecordKind = "computation"
	KindRevenue     RecordKind = "revenue"
	KindTotal       RecordKind = "total"
	KindDetail      RecordKind = "detail"
)

// CompanyInfo holds the identification data from the 0000 opening record.
type CompanyInfo struct {
	Name          string `json:"name"`
	CNPJ          string `json:"cnpj"`
	UF            string `json:"uf"`
	IE            string `json:"ie,omitempty"`
	CityCode      string `json:"city_code,omitempty"`
	CNAE          string `json:"cnae,omitempty"`
	PeriodStart   string `json:"period_start,omitempty"`
	PeriodEnd     string `json:"period_end,omitempty"`
	LayoutVersion string `json:"layout_version,omitempty"`
}

// RegimeInfo captures tax regime flags (0110, 0010).
type RegimeInfo struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Cumulative  bool   `json:"cumulative,omitempty"`
}

// Participant is a trading partner from the 0150 record.
type Participant struct {
	Code string `json:"code"`
	Name string `json:"name"`
	CNPJ string `json:"cnpj,omitempty"`
	UF   string `json:"uf,omitempty"`
}

// FiscalDocument is a transaction document (C100, A100).
type FiscalDocument struct {
	Operation   string  `json:"operation"` // "0" entrada, "1" saida
	Participant string  `json:"participant,omitempty"`
	Model       string  `json:"model,omitempty"`
	Number      string  `json:"number"`
	Key         string  `json:"key,omitempty"`
	IssueDate   string  `json:"issue_date,omitempty"`
	TotalValue  float64 `json:"total_value"`
	ICMSBase    float64 `json:"icms_base,omitempty"`
	ICMSValue   float64 `json:"icms_value,omitempty"`
	STValue     float64 `json:"st_value,omitempty"`
	IPIValue    float64 `json:"ipi_value,omitempty"`
	PISValue    float64 `json:"pis_value,omitempty"`
	COFINSValue float64 `json:"cofins_value,omitempty"`
}

// IsOutbound reports whether the document is a sale (saída).
func (d FiscalDocument) IsOutbound() bool { return d.Operation == "1" }

// LineItem is an item-level record (C170).
type LineItem struct {
	ItemNumber string  `json:"item_number"`
	ItemCode   string  `json:"item_code,omitempty"`
	CFOP       string  `json:"cfop"`
	CST        string  `json:"cst,omitempty"`
	Value      float64 `json:"value"`
	ICMSBase   float64 `json:"icms_base,omitempty"`
	ICMSRate   float64 `json:"icms_rate,omitempty"`
	ICMSValue  float64 `json:"icms_value,omitempty"`
	STValue    float64 `json:"st_value,omitempty"`
	IPIValue   float64 `json:"ipi_value,omitempty"`
}

// TaxSummary is an analytic summary line (C190).
type TaxSummary struct {
	CST       string  `json:"cst"`
	CFOP      string  `json:"cfop"`
	Rate      float64 `json:"rate"`
	OprValue  float64 `json:"opr_value"`
	ICMSBase  float64 `json:"icms_base"`
	ICMSValue float64 `json:"icms_value"`
	STValue   float64 `json:"st_value,omitempty"`
	IPIValue  float64 `json:"ipi_value,omitempty"`
}

// TaxCredit is a credit entry for a tax (M100, M500, E110/E520 credit side).
type TaxCredit struct {
	Tax    TaxType `json:"tax"`
	Code   string  `json:"code,omitempty"`
	Base   float64 `json:"base,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	Value  float64 `json:"value"`
	Origin string  `json:"origin"`
}

// TaxDebit is a debit entry for a tax (M200/M600 totals, E110/E520 debit side).
type TaxDebit struct {
	Tax    TaxType `json:"tax"`
	Value  float64 `json:"value"`
	Origin string  `json:"origin"`
}

// AdjustDirection flags whether an adjustment raises or lowers its target.
type AdjustDirection string

// Constants for adjustment directions.
const (
	AdjustIncrease AdjustDirection = "acrescimo"
	AdjustDecrease AdjustDirection = "reducao"
)

// AdjustmentDetail is a child record itemizing an aggregate's adjustments
// (M215/M615 for the contribution base, M220/M620 for the contribution
// itself, E111 for the ICMS apuration).
type AdjustmentDetail struct {
	Tax            TaxType         `json:"tax"`
	Direction      AdjustDirection `json:"direction"`
	Value          float64         `json:"value"`
	Code           string          `json:"code,omitempty"`
	Description    string          `json:"description,omitempty"`
	BaseAdjustment bool            `json:"base_adjustment,omitempty"`
	Orphaned       bool            `json:"orphaned,omitempty"`
}

// ValidationOutcome records the result of one reconciliation formula check.
type ValidationOutcome struct {
	IsValid    bool    `json:"is_valid"`
	Divergence float64 `json:"divergence"`
	Formula    string  `json:"formula"`
	Expected   float64 `json:"expected"`
	Declared   float64 `json:"declared"`
}

// ApurationRecord is a periodic tax apuration aggregate (M210/M610 for
// PIS/COFINS, E110 for ICMS, E520 for IPI). Declared sub-totals are kept
// verbatim so the reconciliation step can recompute and compare them.
// AdjustIncrease/AdjustDecrease carry the full adjustment totals;
// DetailIncrease/DetailDecrease carry only the portion the child records
// itemize (the ICMS apuration folds document adjustments and reversals
// into the former, but E111 details only cover VL_TOT_AJ_DEBITOS and
// VL_TOT_AJ_CREDITOS).
type ApurationRecord struct {
	Tax              TaxType             `json:"tax"`
	ContributionCode string              `json:"contribution_code,omitempty"`
	GrossRevenue     float64             `json:"gross_revenue,omitempty"`
	OriginalBase     float64             `json:"original_base"`
	BaseIncrease     float64             `json:"base_increase"`
	BaseDecrease     float64             `json:"base_decrease"`
	AdjustedBase     float64             `json:"adjusted_base"`
	Rate             float64             `json:"rate"`
	Apportioned      float64             `json:"apportioned"`
	AdjustIncrease   float64             `json:"adjust_increase"`
	AdjustDecrease   float64             `json:"adjust_decrease"`
	DetailIncrease   float64             `json:"detail_increase"`
	DetailDecrease   float64             `json:"detail_decrease"`
	Deferred         float64             `json:"deferred"`
	DeferredPrior    float64             `json:"deferred_prior"`
	FinalValue       float64             `json:"final_value"`
	TotalCredits     float64             `json:"total_credits,omitempty"`
	Children         []*AdjustmentDetail `json:"children,omitempty"`
	Validations      []ValidationOutcome `json:"validations,omitempty"`
}

// InventoryRecord is a physical inventory total (H005).
type InventoryRecord struct {
	Date       string  `json:"date"`
	TotalValue float64 `json:"total_value"`
	Reason     string  `json:"reason,omitempty"`
}

// Account is a chart-of-accounts entry (I050, J050).
type Account struct {
	Code   string `json:"code"`
	Nature string `json:"nature,omitempty"` // 01 ativo, 02 passivo, 03 PL, 04 resultado
	Kind   string `json:"kind,omitempty"`   // S sintética, A analítica
	Level  string `json:"level,omitempty"`
	Name   string `json:"name"`
}

// AccountBalance is a periodic account balance (I155).
type AccountBalance struct {
	AccountCode string  `json:"account_code"`
	Opening     float64 `json:"opening"`
	OpeningInd  string  `json:"opening_ind,omitempty"`
	Debits      float64 `json:"debits"`
	Credits     float64 `json:"credits"`
	Closing     float64 `json:"closing"`
	ClosingInd  string  `json:"closing_ind,omitempty"` // D ou C
}

// StatementLine is an income-statement or balance-sheet line (J150, J100, L300).
type StatementLine struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Level       string  `json:"level,omitempty"`
	Value       float64 `json:"value"`
	Indicator   string  `json:"indicator,omitempty"` // D ou C
	Source      string  `json:"source"`
}

// TaxComputation is an income-tax calculation record (N630, N670, P300, P500).
type TaxComputation struct {
	Tax    TaxType `json:"tax"`
	Base   float64 `json:"base,omitempty"`
	Due    float64 `json:"due"`
	Source string  `json:"source"`
}

// RevenueRecord is a declared revenue figure outside the apuration blocks
// (Y540 per-establishment revenue, M400/M800 untaxed revenue).
type RevenueRecord struct {
	Value  float64 `json:"value"`
	CNAE   string  `json:"cnae,omitempty"`
	Source string  `json:"source"`
}

// RecordCount is a closing-block record tally (9900).
type RecordCount struct {
	TypeCode string `json:"type_code"`
	Count    int    `json:"count"`
}

// GenericRecord preserves a decoded record that has no dedicated bucket.
type GenericRecord struct {
	TypeCode string   `json:"type_code"`
	Fields   []string `json:"fields"`
}

// ParseError describes a recoverable per-record decode failure.
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParseMetadata summarizes the outcome of one document parse.
type ParseMetadata struct {
	LinesTotal     int          `json:"lines_total"`
	RecordsDecoded int          `json:"records_decoded"`
	RecordsSkipped int          `json:"records_skipped"`
	Errors         []ParseError `json:"errors,omitempty"`
}

// ParsedDocument owns every record decoded from one SPED file, grouped
// into category buckets. Entries that failed their structural guard are
// never inserted; they are counted in Meta instead.
type ParsedDocument struct {
	ID           string                     `json:"id"`
	Family       DocumentFamily             `json:"family"`
	FileName     string                     `json:"file_name,omitempty"`
	Company      CompanyInfo                `json:"company"`
	Regimes      []RegimeInfo               `json:"regimes,omitempty"`
	Participants []Participant              `json:"participants,omitempty"`
	Documents    []FiscalDocument           `json:"documents,omitempty"`
	Items        []LineItem                 `json:"items,omitempty"`
	Summaries    []TaxSummary               `json:"summaries,omitempty"`
	Credits      []TaxCredit                `json:"credits,omitempty"`
	Debits       []TaxDebit                 `json:"debits,omitempty"`
	Apurations   []*ApurationRecord         `json:"apurations,omitempty"`
	Adjustments  []*AdjustmentDetail        `json:"adjustments,omitempty"`
	Inventories  []InventoryRecord          `json:"inventories,omitempty"`
	Accounts     []Account                  `json:"accounts,omitempty"`
	Balances     []AccountBalance           `json:"balances,omitempty"`
	Statements   []StatementLine            `json:"statements,omitempty"`
	Computations []TaxComputation           `json:"computations,omitempty"`
	Revenues     []RevenueRecord            `json:"revenues,omitempty"`
	Counts       []RecordCount              `json:"counts,omitempty"`
	Extras       map[string][]GenericRecord `json:"extras,omitempty"`
	Meta         ParseMetadata              `json:"meta"`
}

// AddError appends a recoverable per-record error to the parse metadata.
func (d *ParsedDocument) AddError(line int, message string) {
	d.Meta.Errors = append(d.Meta.Errors, ParseError{Line: line, Message: message})
}

// FigureSource tells which fallback strategy produced a tax figure.
type FigureSource string

// Constants for figure sources.
const (
	SourceDeclared  FigureSource = "declared"
	SourceAlternate FigureSource = "alternate"
	SourceEstimated FigureSource = "estimated"
)

// TaxFigure is the unit produced by the fallback chain for one
// (tax type, direction) pair.
type TaxFigure struct {
	Value  float64      `json:"value"`
	Source FigureSource `json:"source"`
	Basis  string       `json:"basis,omitempty"`
}

// TaxLine aggregates debit, credit and derived figures for one tax.
type TaxLine struct {
	Debits        TaxFigure `json:"debits"`
	Credits       TaxFigure `json:"credits"`
	NetLiability  float64   `json:"net_liability"`
	EffectiveRate float64   `json:"effective_rate"`
}

// TaxComposition is the consolidated per-tax breakdown.
type TaxComposition struct {
	Taxes              map[TaxType]*TaxLine `json:"taxes"`
	TotalNetLiability  float64              `json:"total_net_liability"`
	TotalEffectiveRate float64              `json:"total_effective_rate"`
}

// FinancialResults carries revenue, cost and margin figures.
type FinancialResults struct {
	GrossRevenue    float64 `json:"gross_revenue"`
	NetRevenue      float64 `json:"net_revenue"`
	TotalCost       float64 `json:"total_cost"`
	OperatingExp    float64 `json:"operating_expenses"`
	NetIncome       float64 `json:"net_income"`
	GrossMargin     float64 `json:"gross_margin"`
	OperatingMargin float64 `json:"operating_margin"`
	NetMargin       float64 `json:"net_margin"`
}

// CashCycle carries the cash-conversion-cycle figures in days.
type CashCycle struct {
	ReceivableDays float64 `json:"receivable_days"`
	InventoryDays  float64 `json:"inventory_days"`
	PayableDays    float64 `json:"payable_days"`
	OperatingCycle float64 `json:"operating_cycle"`
	NetCycle       float64 `json:"net_cycle"`
	Basis          string  `json:"basis,omitempty"`
}

// ProjectionYear is one year of the transition projection.
type ProjectionYear struct {
	Year          int     `json:"year"`
	CurrentWeight float64 `json:"current_weight"`
	TargetWeight  float64 `json:"target_weight"`
	ProjectedTax  float64 `json:"projected_tax"`
}

// TransitionProjection blends current-regime liability with the target
// regime across the statutory transition schedule.
type TransitionProjection struct {
	TargetRate  float64          `json:"target_rate"`
	Years       []ProjectionYear `json:"years"`
	TotalImpact float64          `json:"total_impact"`
}

// QualityLevel is the qualitative confidence classification.
type QualityLevel string

// Constants for quality levels.
const (
	QualityLow    QualityLevel = "BAIXA"
	QualityMedium QualityLevel = "MEDIA"
	QualityHigh   QualityLevel = "ALTA"
)

// QualityScore breaks the confidence score into its weighted components.
type QualityScore struct {
	Completeness    float64      `json:"completeness"`
	Consistency     float64      `json:"consistency"`
	Plausibility    float64      `json:"plausibility"`
	SourceDiversity float64      `json:"source_diversity"`
	Total           float64      `json:"total"`
	Level           QualityLevel `json:"level"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// SourceSummary identifies one input document inside a consolidated report.
type SourceSummary struct {
	ID             string         `json:"id"`
	Family         DocumentFamily `json:"family"`
	FileName       string         `json:"file_name,omitempty"`
	RecordsDecoded int            `json:"records_decoded"`
	RecordsSkipped int            `json:"records_skipped"`
}

// ConsolidatedReport is the final output of the extraction pipeline.
// It is immutable once returned and JSON-serializable.
type ConsolidatedReport struct {
	Company      CompanyInfo           `json:"company"`
	Sources      []SourceSummary       `json:"sources"`
	Composition  TaxComposition        `json:"tax_composition"`
	Financial    FinancialResults      `json:"financial_results"`
	CashCycle    CashCycle             `json:"cash_cycle"`
	Projection   *TransitionProjection `json:"transition_projection,omitempty"`
	Quality      QualityScore          `json:"quality"`
	Observations []string              `json:"observations,omitempty"`
}

// Options tunes the consolidation step.
type Options struct {
	UF             string  `json:"uf,omitempty"`
	TargetRate     float64 `json:"target_rate,omitempty"`
	WithProjection bool    `json:"with_projection"`
}
