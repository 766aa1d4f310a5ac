package models

import (
	"time"
)

// DebtorType tells whether the counterparty owes the owner or is owed by the owner
type DebtorType string

// Debtor type constants
const (
	DebtorTypeCustomer DebtorType = "CUSTOMER" // Khách hàng (phải thu)
	DebtorTypeSupplier DebtorType = "SUPPLIER" // Nhà cung cấp (phải trả)
)

// Valid reports whether t is one of the known debtor types
func (t DebtorType) Valid() bool {
	return t == DebtorTypeCustomer || t == DebtorTypeSupplier
}

// Label returns the Vietnamese label used in lists and exports
func (t DebtorType) Label() string {
	switch t {
	case DebtorTypeCustomer:
		return "Khách hàng"
	case DebtorTypeSupplier:
		return "Nhà cung cấp"
	default:
		return string(t)
	}
}

// LongLabel returns the label with its receivable/payable qualifier
func (t DebtorType) LongLabel() string {
	switch t {
	case DebtorTypeCustomer:
		return "Khách hàng (Phải thu)"
	case DebtorTypeSupplier:
		return "Nhà cung cấp (Phải trả)"
	default:
		return string(t)
	}
}

// Debtor is a counterparty tracked by the ledger.
// TotalBalance is a cached value: the signed sum of the debtor's transactions.
// Positive means money is outstanding; the meaning (receivable or payable) follows Type.
type Debtor struct {
	ID           string     `json:"id" gorm:"primaryKey;size:64"`
	Name         string     `json:"name" gorm:"not null"`
	Phone        string     `json:"phone" gorm:"size:32"`
	Email        string     `json:"email,omitempty" gorm:"size:255"`
	Type         DebtorType `json:"type" gorm:"size:16;not null;index"`
	TotalBalance int64      `json:"totalBalance" gorm:"not null;default:0"`
	LastUpdated  time.Time  `json:"lastUpdated" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Debtor) TableName() string {
	return "debtors"
}
