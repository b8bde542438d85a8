package handler

import "time"

type createClinicRequest struct {
	Name     string   `json:"name"     validate:"required,max=200"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	Services []string `json:"services" validate:"omitempty,dive,required"`
}

type updateClinicRequest struct {
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type availabilityRequest struct {
	Date      string `json:"date"      validate:"required,datetime=2006-01-02"`
	Available *bool  `json:"available" validate:"required"`
}

type capacitySlotRequest struct {
	ClinicID int64     `json:"clinic_id" validate:"required,gt=0"`
	DateTime time.Time `json:"date_time" validate:"required"`
}

type broadcastRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1,dive,required"`
	Message   string   `json:"message"   validate:"required"`
}

type broadcastResponse struct {
	Sent   []string          `json:"sent"`
	Failed map[string]string `json:"failed"`
}

type assignStaffRequest struct {
	UserID   string `json:"user_id"   validate:"required"`
	ClinicID int64  `json:"clinic_id" validate:"required,gt=0"`
}

// capacityRequest mirrors the remote capacity payload with snake_case keys.
type capacityRequest struct {
	ClinicCode           int `json:"clinic_code"           validate:"required,gt=0"`
	ReservedAppointments int `json:"reserved_appointments" validate:"gte=0"`
}
