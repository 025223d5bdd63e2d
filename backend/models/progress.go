package models

// HistoryOverview summarizes a user's own quiz results.
type HistoryOverview struct {
	TotalTests   int64            `json:"total_tests"`
	BestPercent  int              `json:"best_percent"`
	AvgPercent   float64          `json:"avg_percent"`
	PerCategory  map[string]int64 `json:"per_category"`
	RecentResult []QuizResult     `json:"recent_results"`
}
