package main

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type sidekiqJob struct {
	Class string            `json:"class"`
	Args  []json.RawMessage `json:"args"`
	Queue string            `json:"queue"`
}

var acceptedJobClasses = map[string]bool{
	"PaymentAnalysisWorker":   true,
	"GoPaymentAnalysisWorker": true,
}

// decodeJob parses a queue payload and returns the batch id it refers to.
func decodeJob(payload string) (int64, error) {
	var job sidekiqJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return 0, fmt.Errorf("invalid job json: %w", err)
	}
	if !acceptedJobClasses[job.Class] {
		return 0, fmt.Errorf("skipping job class=%s", job.Class)
	}
	if len(job.Args) == 0 {
		return 0, fmt.Errorf("job missing batch id: %s", payload)
	}
	return parseBatchID(job.Args[0])
}

// parseBatchID extracts a batch id from a job argument that may be encoded
// either as a JSON number or as a quoted string.
func parseBatchID(raw json.RawMessage) (int64, error) {
	var id int64
	var asString string
	if err := json.Unmarshal(raw, &id); err != nil {
		if err := json.Unmarshal(raw, &asString); err != nil {
			return 0, fmt.Errorf("unsupported arg: %s", string(raw))
		}
		if asString == "" {
			return 0, fmt.Errorf("empty string")
		}
		id, err = strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return 0, err
		}
	}
	if id <= 0 {
		return 0, fmt.Errorf("batch id must be positive, got %d", id)
	}
	return id, nil
}
