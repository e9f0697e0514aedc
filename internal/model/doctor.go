package model

import (
	"github.com/google/uuid"
)

// Doctor belongs to exactly one clinic and is cascade-deleted with it.
// The availability window spans AvailableFromWeekDay..AvailableToWeekDay
// (0 = Sunday) between AvailableFromTime and AvailableToTime each day.
// Prices are stored in cents to avoid floating-point error.
type Doctor struct {
	Base
	ClinicID                uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name                    string    `db:"name" json:"name"`
	Speciality              string    `db:"speciality" json:"speciality"`
	AvatarImageURL          *string   `db:"avatar_image_url" json:"avatar_image_url,omitempty"`
	AvailableFromWeekDay    int       `db:"available_from_week_day" json:"available_from_week_day"`
	AvailableToWeekDay      int       `db:"available_to_week_day" json:"available_to_week_day"`
	AvailableFromTime       string    `db:"available_from_time" json:"available_from_time"`
	AvailableToTime         string    `db:"available_to_time" json:"available_to_time"`
	AppointmentPriceInCents int       `db:"appointment_price_in_cents" json:"appointment_price_in_cents"`
}

type CreateDoctorRequest struct {
	Name                    string  `json:"name" binding:"required"`
	Speciality              string  `json:"speciality" binding:"required"`
	AvatarImageURL          *string `json:"avatar_image_url"`
	AvailableFromWeekDay    int     `json:"available_from_week_day" binding:"min=0,max=6"`
	AvailableToWeekDay      int     `json:"available_to_week_day" binding:"min=0,max=6"`
	AvailableFromTime       string  `json:"available_from_time" binding:"required,timeofday"`
	AvailableToTime         string  `json:"available_to_time" binding:"required,timeofday"`
	AppointmentPriceInCents int     `json:"appointment_price_in_cents" binding:"required,gt=0"`
}

type UpdateDoctorRequest struct {
	Name                    *string `json:"name"`
	Speciality              *string `json:"speciality"`
	AvatarImageURL          *string `json:"avatar_image_url"`
	AvailableFromWeekDay    *int    `json:"available_from_week_day" binding:"omitempty,min=0,max=6"`
	AvailableToWeekDay      *int    `json:"available_to_week_day" binding:"omitempty,min=0,max=6"`
	AvailableFromTime       *string `json:"available_from_time" binding:"omitempty,timeofday"`
	AvailableToTime         *string `json:"available_to_time" binding:"omitempty,timeofday"`
	AppointmentPriceInCents *int    `json:"appointment_price_in_cents" binding:"omitempty,gt=0"`
}
