package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the scheduler's process configuration.
type Config struct {
	SchedMinGran  int    `json:"sched_min_gran"`
	SchedMinDepth int    `json:"sched_min_depth"`
	ListenIp      string `json:"listen_ip"`
	ListenPort    int    `json:"listen_port"`
	DbUrl         string `json:"db_url"`
	AgentFile     string `json:"agent_file"`
}

const (
	defaultSchedMinGran  = 200
	defaultSchedMinDepth = 10
)

// Load reads path as JSON into a Config, applies defaults for
// sched_min_gran/sched_min_depth when omitted or zero, then applies
// the DATABASE_URL and AGENT_FILE environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{
		SchedMinGran:  defaultSchedMinGran,
		SchedMinDepth: defaultSchedMinDepth,
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.SchedMinGran <= 0 {
		cfg.SchedMinGran = defaultSchedMinGran
	}
	if cfg.SchedMinDepth <= 0 {
		cfg.SchedMinDepth = defaultSchedMinDepth
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("DATABASE_URL"); ok && v != "" {
		c.DbUrl = v
	}
	if v, ok := os.LookupEnv("AGENT_FILE"); ok && v != "" {
		c.AgentFile = v
	}
}
