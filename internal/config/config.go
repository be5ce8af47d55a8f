// vi: sw=4 ts=4:

/*

	Mnemonic:	config
	Abstract:	Typed configuration for the controller: the admission tunables,
				the static topology description, and the environment-derived
				topology store credential. One YAML document, sectioned --
				decoded straight into a struct instead of a
				map[string]map[string]*string, so callers get compile-time
				field names instead of stringly-keyed lookups and typos.
	Date:		29 July 2026
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshctl/controller/internal/gizmos"
)

// PathSelectAlgorithm names the displacement tie-break policy.
type PathSelectAlgorithm string

const (
	ShortestPath PathSelectAlgorithm = "SHORTEST_PATH"
	LongestPath  PathSelectAlgorithm = "LONGEST_PATH"
	Bandwidth    PathSelectAlgorithm = "BANDWIDTH"
	NoChange     PathSelectAlgorithm = "NO_CHANGE"
)

// GraphStorePasswordEnv is the environment variable the reference store
// credential is read from at startup.
const GraphStorePasswordEnv = "MESHCTL_GRAPH_STORE_PASSWORD"

// Admission holds the admission/displacement tunables.
type Admission struct {
	LimitVideoBandwidth float64             `yaml:"limit_video_bandwidth"`
	LimitOtherBandwidth float64             `yaml:"limit_other_bandwidth"`
	Capacity            float64             `yaml:"capacity"`
	PathSelectAlgorithm PathSelectAlgorithm `yaml:"path_select_algorithm"`
	HMax                int                 `yaml:"h_max"`
	MonitorIntervalS    int                 `yaml:"monitor_interval_s"`
}

// MonitorInterval returns the tick period as a time.Duration.
func (a Admission) MonitorInterval() time.Duration {
	return time.Duration(a.MonitorIntervalS) * time.Second
}

// LinkSpec is one row of the static topology description: an
// (endpoint_a, port_a, endpoint_b, port_b) tuple, plus the capacity of the
// link it describes.
type LinkSpec struct {
	EndpointA string  `yaml:"endpoint_a"`
	PortA     int     `yaml:"port_a"`
	EndpointB string  `yaml:"endpoint_b"`
	PortB     int     `yaml:"port_b"`
	Capacity  float64 `yaml:"capacity"`
}

// SwitchSpec names a switch and its numeric datapath id.
type SwitchSpec struct {
	Name string `yaml:"name"`
	Dpid uint64 `yaml:"dpid"`
}

// HostSpec names a host, its 1-indexed ordinal (used to derive its MAC) and
// its IPv4 address.
type HostSpec struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
	IP4   string `yaml:"ip4"`
}

// Topology is the static topology description loaded from YAML.
type Topology struct {
	Switches []SwitchSpec `yaml:"switches"`
	Hosts    []HostSpec   `yaml:"hosts"`
	Links    []LinkSpec   `yaml:"links"`
}

// Config is the full controller configuration.
type Config struct {
	Admission   Admission `yaml:"admission"`
	Topology    Topology  `yaml:"topology"`
	RESTAddr    string    `yaml:"rest_addr"`
	AgentVerbose uint     `yaml:"agent_verbose"`
}

// Default returns the configuration with every reference default from
// defaults applied and no topology loaded.
func Default() Config {
	return Config{
		Admission: Admission{
			LimitVideoBandwidth: 20,
			LimitOtherBandwidth: 20,
			Capacity:            100,
			PathSelectAlgorithm: Bandwidth,
			HMax:                20,
			MonitorIntervalS:    10,
		},
		RESTAddr: ":8080",
	}
}

// Load reads and decodes a YAML config file, applying Default() first so
// that a partial file only overrides the fields it mentions.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// BuildTopology materializes the static topology description into a live
// gizmos.Topology.
func (c Config) BuildTopology() *gizmos.Topology {
	t := gizmos.MkTopology()

	for _, sw := range c.Topology.Switches {
		t.AddSwitch(gizmos.MkSwitch(sw.Name, sw.Dpid))
	}
	for _, h := range c.Topology.Hosts {
		ip := h.IP4
		t.AddHost(gizmos.MkHost(h.Name, gizmos.MacForIndex(h.Index), ip))
	}
	for _, l := range c.Topology.Links {
		cap := l.Capacity
		if cap == 0 {
			cap = c.Admission.Capacity
		}
		t.AddLink(l.EndpointA, l.PortA, l.EndpointB, l.PortB, cap)
	}

	return t
}

// GraphStorePassword reads the topology store credential from the
// environment. The in-memory design this controller implements does not
// require a persistence backend; this is surfaced only so cmd/meshctld can
// log whether one was configured.
func GraphStorePassword() (string, bool) {
	v, ok := os.LookupEnv(GraphStorePasswordEnv)
	return v, ok
}
