package model

import "time"

// Account is a user's paper-money cash balance. The balance never goes
// negative as a result of engine execution; sufficiency is enforced inside
// the debit statement itself.
type Account struct {
	UserID    string    `json:"userId"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Cash transaction types recorded on the ledger.
const (
	CashDeposit    = "DEPOSIT"
	CashSIPDebit   = "SIP_DEBIT"
	CashSWPCredit  = "SWP_CREDIT"
	CashBuyDebit   = "BUY_DEBIT"
	CashSellCredit = "SELL_CREDIT"
)

// CashTransaction is one append-only ledger entry for a balance movement.
type CashTransaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}
