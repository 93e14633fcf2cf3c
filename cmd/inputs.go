package cmd

import (
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
)

// loadInputs reads the job description and criteria. A missing file falls
// back to the built-in defaults; an unreadable or malformed one is an error.
func loadInputs(config *Config, logger *zap.Logger) (screening.JobDescription, screening.Criteria, error) {
	job, err := screening.LoadJobDescription(config.JobDescription)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("job description file not found, using defaults", zap.String("path", config.JobDescription))
		job = screening.DefaultJobDescription()
	case err != nil:
		return screening.JobDescription{}, screening.Criteria{}, err
	}

	criteria, err := screening.LoadCriteria(config.Criteria)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("criteria file not found, using defaults", zap.String("path", config.Criteria))
		criteria = screening.DefaultCriteria()
	case err != nil:
		return screening.JobDescription{}, screening.Criteria{}, err
	}

	return job, criteria, nil
}
