package models

// TransformReport summarizes one pass of the transformer over the raw input.
type TransformReport struct {
	Total     int `json:"total"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Corrected int `json:"corrected"`
}
