package domain

// StatsSummary holds point-in-time counts over live tickets.
type StatsSummary struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	Pending      int `json:"pending"`
	Resolved     int `json:"resolved"`
	HighPriority int `json:"highPriority"`
}

// ActivityPoint is one day of the creation histogram. Date is the calendar
// date in YYYY-MM-DD form.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats is the full payload served by the stats endpoint.
type Stats struct {
	StatsSummary
	Last7Days []ActivityPoint `json:"last7Days"`
}
