package finance

import (
	"time"

	"gorm.io/gorm"
)

// Kind is the explicit variant tag carried on finance rows, so mixed
// invoice/expense listings never discriminate by field presence.
const (
	KindInvoice = "invoice"
	KindExpense = "expense"
)

const (
	InvoiceStatusPaid    = "paid"
	InvoiceStatusPending = "pending"
	InvoiceStatusOverdue = "overdue"
)

type Invoice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AgencyID   uint      `gorm:"not null;index" json:"id_agencia"`
	ClientName string    `gorm:"column:nome_cliente;not null" json:"nome_cliente"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Status     string    `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	DueDate    time.Time `gorm:"column:data_vencimento" json:"data_vencimento"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Kind string `gorm:"-:all" json:"kind"`
}

func (i *Invoice) AfterFind(tx *gorm.DB) error {
	i.Kind = KindInvoice
	return nil
}

type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AgencyID    uint      `gorm:"not null;index" json:"id_agencia"`
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `gorm:"column:date" json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Kind string `gorm:"-:all" json:"kind"`
}

func (e *Expense) AfterFind(tx *gorm.DB) error {
	e.Kind = KindExpense
	return nil
}
