package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment is read only here; payments reference it.
type Appointment struct {
	Base
	PatientID       int64             `db:"patient_id" json:"patient_id"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Reason          *string           `db:"reason" json:"reason"`
}

func (Appointment) TableName() string { return "appointments" }
