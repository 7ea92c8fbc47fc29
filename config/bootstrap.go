package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

// AgentSpec is one entry of the agent bootstrap file or the
// /add_agent request body: at least one of Ip or Hostname must be
// supplied; when both are set, Ip is used and Hostname is ignored.
type AgentSpec struct {
	Ip           string `json:"ip,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Port         int    `json:"port"`
	QubitCount   int    `json:"qubit_count"`
	CircuitDepth int    `json:"circuit_depth"`
}

type bootstrapFile struct {
	Agents []AgentSpec `json:"agents"`
}

// ResolveIp returns spec.Ip if set, otherwise resolves spec.Hostname
// via DNS and returns the first answer.
func (spec AgentSpec) ResolveIp() (string, error) {
	if spec.Ip != "" {
		return spec.Ip, nil
	}
	if spec.Hostname == "" {
		return "", fmt.Errorf("config: agent spec has neither ip nor hostname")
	}
	addrs, err := net.LookupHost(spec.Hostname)
	if err != nil {
		return "", fmt.Errorf("config: resolve hostname %q: %w", spec.Hostname, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("config: hostname %q resolved to no addresses", spec.Hostname)
	}
	return addrs[0], nil
}

// LoadAgentFile reads the agent bootstrap file at path. A missing file
// is reported via the returned bool (found=false), not an error: it is
// a warning condition, not a fatal one.
func LoadAgentFile(path string) (specs []AgentSpec, found bool, err error) {
	if path == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("config: read agent file %s: %w", path, err)
	}
	var bf bootstrapFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, true, fmt.Errorf("config: parse agent file %s: %w", path, err)
	}
	return bf.Agents, true, nil
}
