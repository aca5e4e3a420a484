package model

import "strings"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type Patient struct {
	Base
	FullName     string  `db:"full_name" json:"full_name"`
	Age          *int    `db:"age" json:"age"`
	Gender       *string `db:"gender" json:"gender"`
	Email        string  `db:"email" json:"email" gorm:"uniqueIndex"`
	PhoneNumber  *string `db:"phone_number" json:"phone_number"`
	Address      *string `db:"address" json:"address"`
	PasswordHash string  `db:"password" json:"-" gorm:"column:password"`
	ProfileImg   *string `db:"profile_img" json:"profile_img"`
}

func (Patient) TableName() string { return "patients" }

// PatientProfile holds the fields shared by create and update requests.
type PatientProfile struct {
	FullName    string  `json:"full_name" form:"full_name" validate:"required,max=255"`
	Age         *int    `json:"age" form:"age" validate:"omitempty,min=0"`
	Gender      *string `json:"gender" form:"gender" validate:"omitempty,oneof=Male Female Other"`
	Email       string  `json:"email" form:"email" validate:"required,max=255,email"`
	PhoneNumber *string `json:"phone_number" form:"phone_number" validate:"omitempty,max=20"`
	Address     *string `json:"address" form:"address" validate:"omitempty,max=255"`
}

func (p *PatientProfile) normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Gender = trimOptional(p.Gender)
	p.PhoneNumber = trimOptional(p.PhoneNumber)
	p.Address = trimOptional(p.Address)
}

type CreatePatientRequest struct {
	PatientProfile
	Password             string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

func (r *CreatePatientRequest) Normalize() {
	r.PatientProfile.normalize()
}

type UpdatePatientRequest struct {
	PatientProfile
	Password             string `json:"password" form:"password" validate:"omitempty,min=6"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

func (r *UpdatePatientRequest) Normalize() {
	r.PatientProfile.normalize()
}

// ApplyTo copies the request onto p. Optional fields left nil keep their
// stored value. The password is handled by the caller.
func (p PatientProfile) ApplyTo(patient *Patient) {
	patient.FullName = p.FullName
	patient.Email = p.Email
	if p.Age != nil {
		patient.Age = p.Age
	}
	if p.Gender != nil {
		patient.Gender = p.Gender
	}
	if p.PhoneNumber != nil {
		patient.PhoneNumber = p.PhoneNumber
	}
	if p.Address != nil {
		patient.Address = p.Address
	}
}
