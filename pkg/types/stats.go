package types

// RequestStats - сводка по статусам заявок для отчёта.
type RequestStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Waiting    int `json:"waiting"`
	Closed     int `json:"closed"`
}

// DashboardStats - формат ответа /api/stats.
type DashboardStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func (s RequestStats) Dashboard() DashboardStats {
	return DashboardStats{
		Total:      s.Total,
		Pending:    s.Open,
		InProgress: s.InProgress,
		Completed:  s.Closed,
	}
}
