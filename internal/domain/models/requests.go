package models

// Requests for drought HTTP endpoints. Defined in domain for consistency and reuse.

type CountsRequest struct {
	Indicator string `query:"indicator" json:"indicator" validate:"required,oneof=rainfall groundwater groundwater-deep"`
	GroupBy   string `query:"group_by" json:"group_by" default:"month" validate:"oneof=month month_of_year day_of_year"`
	From      string `query:"from" json:"from"`
	To        string `query:"to" json:"to"`
}

type StationIndexRequest struct {
	Indicator string `query:"indicator" json:"indicator" validate:"required,oneof=rainfall groundwater groundwater-deep"`
	Station   string `query:"station" json:"station" validate:"required"`
}

type ChronicleRequest struct {
	Indicator string `query:"indicator" json:"indicator" validate:"required,oneof=rainfall groundwater groundwater-deep"`
	Station   string `query:"station" json:"station" validate:"required"`
}

type IngestRequest struct {
	Indicator string `query:"indicator" json:"indicator" validate:"required,oneof=rainfall groundwater groundwater-deep"`
	Async     bool   `query:"async" json:"async" default:"true"`
}
