package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateStationRequest struct {
	Name      string `json:"name"`
	IsEnabled *bool  `json:"is_enabled"`
	SortOrder int    `json:"sort_order"`
}

func (req *CreateStationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.SortOrder, validation.Min(0)),
	)
}

type UpdateStationRequest struct {
	Name      string `json:"name"`
	IsEnabled *bool  `json:"is_enabled"`
	SortOrder int    `json:"sort_order"`
}

func (req *UpdateStationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.IsEnabled, validation.NotNil),
		validation.Field(&req.SortOrder, validation.Min(0)),
	)
}
