package models

// CategoryStats aggregates quiz results for one category.
type CategoryStats struct {
	Category     string  `json:"category"`
	Attempts     int64   `json:"attempts"`
	Players      int64   `json:"players"`
	AvgScore     float64 `json:"avg_score"`
	AvgPercent   float64 `json:"avg_percent"`
	AvgTimeTaken float64 `json:"avg_time_taken"`
}

type PlatformStats struct {
	TotalUsers      int64           `json:"total_users"`
	TotalQuestions  int64           `json:"total_questions"`
	TotalResults    int64           `json:"total_results"`
	PendingItems    int64           `json:"pending_items"`
	OpenReports     int64           `json:"open_reports"`
	AttemptsToday   int64           `json:"attempts_today"`
	ResultsPerGroup []CategoryStats `json:"categories"`
}
