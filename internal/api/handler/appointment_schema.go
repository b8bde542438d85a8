package handler

import "time"

type bookRequest struct {
	ClinicID int64     `json:"clinic_id" validate:"required,gt=0"`
	DateTime time.Time `json:"date_time" validate:"required"`
}

type rescheduleRequest struct {
	DateTime time.Time `json:"date_time" validate:"required"`
}
