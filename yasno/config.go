package yasno

import "fmt"

// Config selects and parameterizes the outage-data source.
type Config struct {
	// Mode selects the source type: "client" or "mock".
	Mode string `json:"mode"`
	// BaseURL is the root of the blackout-service API.
	BaseURL string `json:"base_url"`
	// RegionID and DSOID identify the distribution operator.
	RegionID string `json:"region_id"`
	DSOID    string `json:"dso_id"`
	City     string `json:"city"`
	// TimeoutSeconds bounds one fetch.
	TimeoutSeconds int `json:"timeout_seconds"`
	// FixturePath is the schedule file served in mock mode.
	FixturePath string `json:"fixture_path"`
}

// SetDefaults applies the Kyiv defaults of the public service.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "client"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://app.yasno.ua/api/blackout-service/public/shutdowns"
	}
	if c.RegionID == "" {
		c.RegionID = "25"
	}
	if c.DSOID == "" {
		c.DSOID = "902"
	}
	if c.City == "" {
		c.City = "kyiv"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mode-specific requirements.
func (c Config) Validate() error {
	switch c.Mode {
	case "client":
		return nil
	case "mock":
		if c.FixturePath == "" {
			return fmt.Errorf("fixture_path is required in mock mode")
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
}
