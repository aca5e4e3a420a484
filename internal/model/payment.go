package model

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "Cash"
	PaymentMethodCard      PaymentMethod = "Card"
	PaymentMethodOnline    PaymentMethod = "Online"
	PaymentMethodInsurance PaymentMethod = "Insurance"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

type Payment struct {
	Base
	PatientID       int64         `db:"patient_id" json:"patient_id" gorm:"index"`
	AppointmentID   *int64        `db:"appointment_id" json:"appointment_id"`
	Amount          float64       `db:"amount" json:"amount"`
	PaymentMethod   PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	TransactionDate time.Time     `db:"transaction_date" json:"transaction_date" gorm:"index"`
	Remarks         *string       `db:"remarks" json:"remarks"`
}

func (Payment) TableName() string { return "payments" }

// PaymentDetails is a payment with its related records attached for reads.
type PaymentDetails struct {
	*Payment
	Patient     *Patient     `json:"patient"`
	Appointment *Appointment `json:"appointment"`
}

// PaymentTerms holds the mutable payment fields.
type PaymentTerms struct {
	Amount          *float64 `json:"amount" validate:"required,min=0"`
	PaymentMethod   string   `json:"payment_method" validate:"required,oneof=Cash Card Online Insurance"`
	PaymentStatus   string   `json:"payment_status" validate:"required,oneof=Pending Paid Failed Refunded"`
	TransactionDate string   `json:"transaction_date" validate:"required,date"`
	Remarks         *string  `json:"remarks"`
}

func (t *PaymentTerms) Normalize() {
	t.PaymentMethod = strings.TrimSpace(t.PaymentMethod)
	t.PaymentStatus = strings.TrimSpace(t.PaymentStatus)
	t.TransactionDate = strings.TrimSpace(t.TransactionDate)
	t.Remarks = trimOptional(t.Remarks)
}

// ApplyTo replaces every mutable field of payment. date must be the parsed
// TransactionDate.
func (t PaymentTerms) ApplyTo(payment *Payment, date time.Time) {
	if t.Amount != nil {
		payment.Amount = *t.Amount
	}
	payment.PaymentMethod = PaymentMethod(t.PaymentMethod)
	payment.PaymentStatus = PaymentStatus(t.PaymentStatus)
	payment.TransactionDate = date
	payment.Remarks = t.Remarks
}

type CreatePaymentRequest struct {
	PatientID     *int64 `json:"patient_id" validate:"required"`
	AppointmentID *int64 `json:"appointment_id"`
	PaymentTerms
}

type UpdatePaymentRequest struct {
	PaymentTerms
}
