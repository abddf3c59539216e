package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BalanceSheetHeader covers every column either pipeline requires
var BalanceSheetHeader = []string{
	"bank_id", "year", "assets",
	"deposits", "us_deposits", "usdo_deposits",
	"loans", "odraft",
	"capital", "surplus_fund", "undivided_profits",
	"currency", "legal_tender", "checks_and_other",
	"bills_sb", "bills_nb", "bonds_hand", "bonds_dep",
	"due_from_nb", "due_from_ra", "due_from_other_nb", "due_from_other_nb_and_sb", "due_from_sb",
	"bills_payable", "rediscounts", "is_rec",
}

// BalanceSheetRow builds one CSV row. Liquid asset and funding fields not
// named here are zero.
type BalanceSheetRow struct {
	BankID           string
	Year             string
	Assets           string
	Deposits         string
	Loans            string
	Capital          string
	SurplusFund      string
	UndividedProfits string
	Currency         string
	BillsPayable     string
	IsRec            string
}

func (r BalanceSheetRow) cells() []string {
	or := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return []string{
		r.BankID, r.Year, r.Assets,
		or(r.Deposits, "0"), "0", "0",
		or(r.Loans, "0"), "0",
		or(r.Capital, "0"), or(r.SurplusFund, "0"), r.UndividedProfits,
		or(r.Currency, "0"), "0", "0",
		"0", "0", "0", "0",
		"0", "0", "0", "0", "0",
		or(r.BillsPayable, "0"), "0", or(r.IsRec, "0"),
	}
}

// WriteBalanceSheetCSV writes rows under BalanceSheetHeader into dir and
// returns the file path
func WriteBalanceSheetCSV(t *testing.T, dir string, rows []BalanceSheetRow) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(BalanceSheetHeader, ","))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(strings.Join(r.cells(), ","))
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, "balance_sheets.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("failed to write balance sheet fixture: %v", err)
	}
	return path
}

// SampleBalanceSheets is a small panel of three banks over two years
func SampleBalanceSheets() []BalanceSheetRow {
	return []BalanceSheetRow{
		{BankID: "1", Year: "1900", Assets: "100", Deposits: "60", Loans: "40", Capital: "10", SurplusFund: "5", UndividedProfits: "2", Currency: "8", BillsPayable: "1", IsRec: "0"},
		{BankID: "1", Year: "1901", Assets: "120", Deposits: "70", Loans: "50", Capital: "10", SurplusFund: "5", UndividedProfits: "3", Currency: "9", BillsPayable: "2", IsRec: "0"},
		{BankID: "2", Year: "1900", Assets: "200", Deposits: "150", Loans: "120", Capital: "20", SurplusFund: "4", UndividedProfits: "1", Currency: "10", BillsPayable: "10", IsRec: "1"},
		{BankID: "2", Year: "1901", Assets: "180", Deposits: "140", Loans: "130", Capital: "20", SurplusFund: "2", UndividedProfits: "-1", Currency: "6", BillsPayable: "20", IsRec: "1"},
		{BankID: "3", Year: "1900", Assets: "50", Deposits: "30", Loans: "20", Capital: "8", SurplusFund: "6", UndividedProfits: "4", Currency: "5", BillsPayable: "0", IsRec: "0"},
		{BankID: "3", Year: "1901", Assets: "55", Deposits: "32", Loans: "22", Capital: "8", SurplusFund: "6", UndividedProfits: "5", Currency: "5", BillsPayable: "0", IsRec: "0"},
	}
}
