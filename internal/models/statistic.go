package models

// StatisticRecord is one entry of the impact statistics panel
type StatisticRecord struct {
	Title  string `json:"title"`
	Value  string `json:"value"` // percentage, e.g. "73%"
	Source string `json:"source"`
	Info   string `json:"info"`
	Impact string `json:"impact"`
	Action string `json:"action"`
}
