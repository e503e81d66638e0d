package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errAgesQuantityMismatch = errors.New("ages must have exactly quantity entries")

type CreateAttendeeRequest struct {
	Name         string  `json:"name"`
	RecordNumber string  `json:"record_number"`
	Governorate  string  `json:"governorate"`
	District     string  `json:"district"`
	Area         string  `json:"area"`
	Phone        *string `json:"phone"`
	Quantity     int     `json:"quantity"`
	Ages         []int   `json:"ages"`
}

func (req *CreateAttendeeRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.RecordNumber, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Quantity, validation.Min(1)),
	)
	if err != nil {
		return err
	}

	if len(req.Ages) > 0 && len(req.Ages) != req.Quantity {
		return errAgesQuantityMismatch
	}

	return nil
}

// ListAttendeesRequest binds the roster query string.
type ListAttendeesRequest struct {
	Search      string `form:"search"`
	Governorate string `form:"governorate"`
	District    string `form:"district"`
	Area        string `form:"area"`
	StationID   uint   `form:"station_id"`
	Checked     string `form:"checked"`
	SortKey     string `form:"sort_key"`
	SortDir     string `form:"sort_dir"`
	Page        int    `form:"page,default=1"`
}

func (req *ListAttendeesRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Page, validation.Min(1)),
		validation.Field(&req.Search, validation.Length(0, 100)),
		validation.Field(&req.Checked, validation.In("any", "checked", "not_checked")),
		validation.Field(&req.SortKey, validation.In(
			"name", "record_number", "governorate", "district", "area", "quantity")),
		validation.Field(&req.SortDir, validation.In("asc", "desc")),
	)
}
