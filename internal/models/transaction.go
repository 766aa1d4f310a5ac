package models

// TransactionType is the direction of a ledger entry
type TransactionType string

// Transaction type constants. The wire values match the backup file format.
const (
	TransactionTypeIncrease TransactionType = "INCREASE" // Cho nợ thêm / phát sinh nợ mới
	TransactionTypeDecrease TransactionType = "DECREASE" // Trả bớt / thu hồi nợ
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncrease || t == TransactionTypeDecrease
}

// Sign returns +1 for increases and -1 for decreases
func (t TransactionType) Sign() int64 {
	if t == TransactionTypeDecrease {
		return -1
	}
	return 1
}

// Label returns the Vietnamese label of the transaction type
func (t TransactionType) Label() string {
	if t == TransactionTypeDecrease {
		return "Trả bớt"
	}
	return "Phát sinh nợ"
}

// Transaction is an immutable ledger entry against one debtor.
// Amount is always positive; Type carries the direction.
type Transaction struct {
	ID       string          `json:"id" gorm:"primaryKey;size:64"`
	DebtorID string          `json:"debtorId" gorm:"size:64;not null;index"`
	Amount   int64           `json:"amount" gorm:"not null"`
	Date     LedgerDate      `json:"date" gorm:"type:varchar(40);not null"`
	Type     TransactionType `json:"type" gorm:"size:16;not null"`
	Note     string          `json:"note"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// Effect returns the signed change this entry applies to its debtor's balance
func (t *Transaction) Effect() int64 {
	return t.Type.Sign() * t.Amount
}
