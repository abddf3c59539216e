package domain

// BalanceSheetRecord is one bank-year observation from the OCC balance sheets.
// Every line item is nullable; how a missing item folds depends on the
// operation consuming it.
type BalanceSheetRecord struct {
	BankID string  `json:"bank_id"`
	Year   NullInt `json:"year"`

	Assets       NullFloat `json:"assets"`
	Deposits     NullFloat `json:"deposits"`
	USDeposits   NullFloat `json:"us_deposits"`
	USDODeposits NullFloat `json:"usdo_deposits"`
	Loans        NullFloat `json:"loans"`
	ODraft       NullFloat `json:"odraft"`

	Capital          NullFloat `json:"capital"`
	SurplusFund      NullFloat `json:"surplus_fund"`
	UndividedProfits NullFloat `json:"undivided_profits"`

	Currency            NullFloat `json:"currency"`
	LegalTender         NullFloat `json:"legal_tender"`
	ChecksAndOther      NullFloat `json:"checks_and_other"`
	BillsSB             NullFloat `json:"bills_sb"`
	BillsNB             NullFloat `json:"bills_nb"`
	BondsHand           NullFloat `json:"bonds_hand"`
	BondsDep            NullFloat `json:"bonds_dep"`
	DueFromNB           NullFloat `json:"due_from_nb"`
	DueFromRA           NullFloat `json:"due_from_ra"`
	DueFromOtherNB      NullFloat `json:"due_from_other_nb"`
	DueFromOtherNBAndSB NullFloat `json:"due_from_other_nb_and_sb"`
	DueFromSB           NullFloat `json:"due_from_sb"`

	BillsPayable NullFloat `json:"bills_payable"`
	Rediscounts  NullFloat `json:"rediscounts"`

	// IsRec flags a bank placed in receivership (1) or not (0).
	IsRec NullFloat `json:"is_rec"`
}

// Column names as they appear in the OCC CSV header.
const (
	ColBankID              = "bank_id"
	ColYear                = "year"
	ColAssets              = "assets"
	ColDeposits            = "deposits"
	ColUSDeposits          = "us_deposits"
	ColUSDODeposits        = "usdo_deposits"
	ColLoans               = "loans"
	ColODraft              = "odraft"
	ColCapital             = "capital"
	ColSurplusFund         = "surplus_fund"
	ColUndividedProfits    = "undivided_profits"
	ColCurrency            = "currency"
	ColLegalTender         = "legal_tender"
	ColChecksAndOther      = "checks_and_other"
	ColBillsSB             = "bills_sb"
	ColBillsNB             = "bills_nb"
	ColBondsHand           = "bonds_hand"
	ColBondsDep            = "bonds_dep"
	ColDueFromNB           = "due_from_nb"
	ColDueFromRA           = "due_from_ra"
	ColDueFromOtherNB      = "due_from_other_nb"
	ColDueFromOtherNBAndSB = "due_from_other_nb_and_sb"
	ColDueFromSB           = "due_from_sb"
	ColBillsPayable        = "bills_payable"
	ColRediscounts         = "rediscounts"
	ColIsRec               = "is_rec"
)

// ColumnKind is the declared type of a CSV column.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInteger
	KindFloat
)

// String returns the kind name used in log output
func (k ColumnKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Column describes one field of BalanceSheetRecord and how to reach it.
type Column struct {
	Name string
	Kind ColumnKind
	// Field returns a pointer to the float field for KindFloat columns; nil otherwise.
	Field func(r *BalanceSheetRecord) *NullFloat
}

// Columns is the column catalogue in canonical order.
var Columns = []Column{
	{Name: ColBankID, Kind: KindString},
	{Name: ColYear, Kind: KindInteger},
	floatColumn(ColAssets, func(r *BalanceSheetRecord) *NullFloat { return &r.Assets }),
	floatColumn(ColDeposits, func(r *BalanceSheetRecord) *NullFloat { return &r.Deposits }),
	floatColumn(ColUSDeposits, func(r *BalanceSheetRecord) *NullFloat { return &r.USDeposits }),
	floatColumn(ColUSDODeposits, func(r *BalanceSheetRecord) *NullFloat { return &r.USDODeposits }),
	floatColumn(ColLoans, func(r *BalanceSheetRecord) *NullFloat { return &r.Loans }),
	floatColumn(ColODraft, func(r *BalanceSheetRecord) *NullFloat { return &r.ODraft }),
	floatColumn(ColCapital, func(r *BalanceSheetRecord) *NullFloat { return &r.Capital }),
	floatColumn(ColSurplusFund, func(r *BalanceSheetRecord) *NullFloat { return &r.SurplusFund }),
	floatColumn(ColUndividedProfits, func(r *BalanceSheetRecord) *NullFloat { return &r.UndividedProfits }),
	floatColumn(ColCurrency, func(r *BalanceSheetRecord) *NullFloat { return &r.Currency }),
	floatColumn(ColLegalTender, func(r *BalanceSheetRecord) *NullFloat { return &r.LegalTender }),
	floatColumn(ColChecksAndOther, func(r *BalanceSheetRecord) *NullFloat { return &r.ChecksAndOther }),
	floatColumn(ColBillsSB, func(r *BalanceSheetRecord) *NullFloat { return &r.BillsSB }),
	floatColumn(ColBillsNB, func(r *BalanceSheetRecord) *NullFloat { return &r.BillsNB }),
	floatColumn(ColBondsHand, func(r *BalanceSheetRecord) *NullFloat { return &r.BondsHand }),
	floatColumn(ColBondsDep, func(r *BalanceSheetRecord) *NullFloat { return &r.BondsDep }),
	floatColumn(ColDueFromNB, func(r *BalanceSheetRecord) *NullFloat { return &r.DueFromNB }),
	floatColumn(ColDueFromRA, func(r *BalanceSheetRecord) *NullFloat { return &r.DueFromRA }),
	floatColumn(ColDueFromOtherNB, func(r *BalanceSheetRecord) *NullFloat { return &r.DueFromOtherNB }),
	floatColumn(ColDueFromOtherNBAndSB, func(r *BalanceSheetRecord) *NullFloat { return &r.DueFromOtherNBAndSB }),
	floatColumn(ColDueFromSB, func(r *BalanceSheetRecord) *NullFloat { return &r.DueFromSB }),
	floatColumn(ColBillsPayable, func(r *BalanceSheetRecord) *NullFloat { return &r.BillsPayable }),
	floatColumn(ColRediscounts, func(r *BalanceSheetRecord) *NullFloat { return &r.Rediscounts }),
	floatColumn(ColIsRec, func(r *BalanceSheetRecord) *NullFloat { return &r.IsRec }),
}

func floatColumn(name string, field func(r *BalanceSheetRecord) *NullFloat) Column {
	return Column{Name: name, Kind: KindFloat, Field: field}
}

// LookupColumn finds a catalogue entry by header name.
func LookupColumn(name string) (Column, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Value returns the named float field of the record.
// Unknown or non-float columns read as missing.
func (r BalanceSheetRecord) Value(name string) NullFloat {
	c, ok := LookupColumn(name)
	if !ok || c.Field == nil {
		return NullFloat{}
	}
	return *c.Field(&r)
}

// WithValue returns a copy of the record with the named float field replaced.
func (r BalanceSheetRecord) WithValue(name string, v NullFloat) BalanceSheetRecord {
	c, ok := LookupColumn(name)
	if !ok || c.Field == nil {
		return r
	}
	*c.Field(&r) = v
	return r
}
