package models

// ExtractionReport is the outcome of one extraction run
type ExtractionReport struct {
	Run        ExtractionRun       `json:"run"`
	Rows       []FeatureRecord     `json:"rows"`
	Failures   []ExtractionFailure `json:"failures"`
	Incomplete []CompletenessIssue `json:"incomplete,omitempty"`
}

// ExtractResponse is returned by the synchronous extraction endpoint
type ExtractResponse struct {
	Columns []Column `json:"columns"`
	ExtractionReport
}

// IngestResponse is returned by the asynchronous ingest endpoint
type IngestResponse struct {
	Status   string              `json:"status"`
	Accepted int                 `json:"accepted"`
	Dropped  int                 `json:"dropped"`
	Failures []ExtractionFailure `json:"failures,omitempty"`
}

// ProfileInfo describes a feature profile
type ProfileInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Units       []string `json:"units"`
	Columns     int      `json:"columns"`
	Default     bool     `json:"default"`
}
