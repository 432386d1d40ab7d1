package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blockedby/forwarder-os/internal/models"
)

// ErrNoJobsConfigured is returned when the job file contains no jobs.
var ErrNoJobsConfigured = errors.New("no forwarding jobs configured")

// jobsFile mirrors the YAML layout of the job configuration file:
//
//	jobs:
//	  - source_chat_ids: [100, 101]
//	    destination_chat_id: 200
//	    keywords: ["urgent"]
type jobsFile struct {
	Jobs []models.Job `yaml:"jobs"`
}

// LoadJobs reads and validates the job configuration file.
// Keywords are normalized to lowercase; every job gets an ID.
func LoadJobs(path string) ([]models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	var file jobsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse jobs file: %w", err)
	}

	if len(file.Jobs) == 0 {
		return nil, ErrNoJobsConfigured
	}

	jobs := make([]models.Job, 0, len(file.Jobs))
	for i := range file.Jobs {
		job := file.Jobs[i]
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		job.Normalize()
		jobs = append(jobs, job)
	}

	return jobs, nil
}
