package domain

// StationTally aggregates the checked slots of one station. Accounts
// counts checked records, People sums their quantities.
type StationTally struct {
	Accounts int64 `json:"accounts"`
	People   int64 `json:"people"`
}

type StationStats struct {
	Station Station      `json:"station"`
	Tally   StationTally `json:"tally"`
}

// Stats is the dashboard snapshot: overall registration totals plus
// per-station progress.
type Stats struct {
	TotalAccounts int64          `json:"total_accounts"`
	TotalPeople   int64          `json:"total_people"`
	Stations      []StationStats `json:"stations"`

	// TopStation is the busiest non-main station by people served,
	// nil until any non-main station has served someone.
	TopStation *StationStats `json:"top_station,omitempty"`
}
