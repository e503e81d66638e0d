package request

import "errors"

var errInvalidStationID = errors.New("station ids must be positive")

// ResetRequest selects which stations to reset. An empty list means
// every station.
type ResetRequest struct {
	StationIDs []uint `json:"station_ids"`
}

func (req *ResetRequest) Validate() error {
	for _, id := range req.StationIDs {
		if id == 0 {
			return errInvalidStationID
		}
	}

	return nil
}
