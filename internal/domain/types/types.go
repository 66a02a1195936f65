// Package types contains common types used across the application
package types

// Entry represents one row of a tier's ranking.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
