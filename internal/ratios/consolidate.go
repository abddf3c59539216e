package ratios

import "occratios/pkg/contracts/domain"

// LiquidAssetFields are the twelve line items summed into liquid assets.
var LiquidAssetFields = []string{
	domain.ColCurrency,
	domain.ColLegalTender,
	domain.ColChecksAndOther,
	domain.ColBillsSB,
	domain.ColBillsNB,
	domain.ColBondsHand,
	domain.ColBondsDep,
	domain.ColDueFromNB,
	domain.ColDueFromRA,
	domain.ColDueFromOtherNB,
	domain.ColDueFromOtherNBAndSB,
	domain.ColDueFromSB,
}

// Consolidate folds raw line items into aggregate accounts. Missing items
// count as zero; there are no error conditions.
func Consolidate(r domain.BalanceSheetRecord) ConsolidatedAccounts {
	var liquid float64
	for _, name := range LiquidAssetFields {
		liquid += r.Value(name).OrZero()
	}

	return ConsolidatedAccounts{
		TotalDeposits: r.Deposits.OrZero() + r.USDeposits.OrZero() + r.USDODeposits.OrZero(),
		TotalLoans:    r.Loans.OrZero() + r.ODraft.OrZero(),
		LiquidAssets:  liquid,
		TotalEquity:   r.Capital.OrZero() + r.SurplusFund.OrZero() + r.UndividedProfits.OrZero(),
	}
}
