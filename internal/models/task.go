package models

// Task is a single checkable step of a habit. Completed is reset at every day boundary.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	XPValue   int    `json:"xp_value"`
	Completed bool   `json:"completed"`
}
