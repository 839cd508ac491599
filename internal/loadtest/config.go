// Package loadtest drives a running inference service with generated patient
// metrics and checks every response against the local scoring engine.
package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	APIPrefix   string        // Business route prefix, e.g. "/api/v1"
	NumRequests int           // Number of samples to generate
	BatchSize   int           // Samples per batch request; 0 or 1 uses /predict
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for samples and results
	Verbose     bool          // Log every mismatch
	Confidence  float64       // Confidence the server reports; 0 means the default
}

// Sample is one generated patient.
type Sample struct {
	PatientID     string  `json:"patient_id"`
	Age           int     `json:"age"`
	BMI           float64 `json:"bmi"`
	BloodPressure int     `json:"blood_pressure"`
}

// predictBody is the request body for one prediction.
type predictBody struct {
	Age           int     `json:"age"`
	BMI           float64 `json:"bmi"`
	BloodPressure int     `json:"blood_pressure"`
}

type batchBody struct {
	Items []predictBody `json:"items"`
}

// Prediction mirrors the service's assessment response.
type Prediction struct {
	RiskScore           float64  `json:"risk_score"`
	RiskLevel           string   `json:"risk_level"`
	Confidence          float64  `json:"confidence"`
	ContributingFactors []string `json:"contributing_factors"`
}

type batchReply struct {
	Results []Prediction `json:"results"`
}

// Result pairs a sample with the server's answer.
type Result struct {
	Sample     Sample      `json:"sample"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Status     int         `json:"status"`
	Err        string      `json:"error,omitempty"`
}

// Mismatch records a server answer that differs from the local engine.
type Mismatch struct {
	Sample   Sample
	Field    string
	Expected any
	Actual   any
}

// Stats holds run statistics.
type Stats struct {
	SamplesGenerated int
	RequestsSent     int
	Successful       int
	Failed           int
	Verified         int
	Mismatches       int
	LevelCounts      map[string]int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
