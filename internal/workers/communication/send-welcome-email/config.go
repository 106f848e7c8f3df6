// internal/workers/communication/send-welcome-email/config.go
package sendwelcomeemail

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
