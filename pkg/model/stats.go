package model

type StatValue struct {
	Value  float64 `json:"value"`
	Change string  `json:"change"`
}

type DashboardStats struct {
	TotalPlaces      StatValue `json:"total_places"`
	ActiveBookings   StatValue `json:"active_bookings"`
	PendingApprovals StatValue `json:"pending_approvals"`
	TodayBookings    StatValue `json:"today_bookings"`
	MonthlyGrowth    StatValue `json:"monthly_growth"`
	UtilizationRate  StatValue `json:"utilization_rate"`
	IssuesReported   StatValue `json:"issues_reported"`
}

type MonthlyBookings struct {
	Name     string `json:"name"`
	Bookings int64  `json:"bookings"`
}
