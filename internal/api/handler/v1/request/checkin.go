package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CheckRequest struct {
	AttendeeID uint `json:"attendee_id"`
	StationID  uint `json:"station_id"`
	Quantity   int  `json:"quantity"`
}

func (req *CheckRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.AttendeeID, validation.Required),
		validation.Field(&req.StationID, validation.Required),
		validation.Field(&req.Quantity, validation.Min(1)),
	)
}

type UncheckRequest struct {
	AttendeeID uint `json:"attendee_id"`
	StationID  uint `json:"station_id"`
}

func (req *UncheckRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.AttendeeID, validation.Required),
		validation.Field(&req.StationID, validation.Required),
	)
}
