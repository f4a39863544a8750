package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# nse-profiler configuration

[profile]
# price-axis resolution of the volume profile
num_bins = 50
# target share of the day's volume inside the value area
value_area_pct = 70.0

[data]
source = "yahoo"
timeframe = "1min"

[cache]
enabled = false
addr = "localhost:6379"
password = ""
db = 0
ttl_hours = 48

[schedule]
# weekdays at 15:45 IST, after market close
daily_cron = "45 15 * * 1-5"
workers = 4

[logging]
level = "info"
`

// createTemplateConfig writes a commented config template so a first
// run leaves something editable behind.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
