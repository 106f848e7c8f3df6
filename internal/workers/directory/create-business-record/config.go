// internal/workers/directory/create-business-record/config.go
package createbusinessrecord

import (
	"time"

	"business-directory/internal/common/config"
)

type Config struct {
	MaxJobsActive int
	Timeout       time.Duration
}

func NewConfig(wc config.WorkerConfig) *Config {
	return &Config{
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
	}
}
