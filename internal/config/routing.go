package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutingConfig maps a ticket category to the offices that handle it, in order of preference.
type RoutingConfig struct {
	Routes map[string][]string `yaml:"routes"`
}

// Office names used by the default routing table and by the seed command.
const (
	OfficeRegistrar         = "Registrar's Office"
	OfficeETC               = "ETC"
	OfficeFacilities        = "Physical Plant and Facilities Management Office"
	OfficePrincipal         = "Principal Office"
	OfficeStudentServices   = "Office of Student Services"
	OfficeGuidance          = "Guidance Office"
	OfficeMediaAlumniPublic = "Office of Media, Alumni, and Public Affairs"
)

// DefaultRoutingConfig is the campus routing table. "general" has no category that
// reaches it today but stays defined so the office keeps a mapping.
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		Routes: map[string][]string{
			"academic":   {OfficeRegistrar},
			"technical":  {OfficeETC},
			"facilities": {OfficeFacilities},
			"lostfound":  {OfficePrincipal, OfficeStudentServices},
			"welfare":    {OfficeGuidance},
			"general":    {OfficeMediaAlumniPublic},
		},
	}
}

// LoadRoutingFile reads a YAML routing table, e.g.
//
//	routes:
//	  technical: ["ETC"]
//	  lostfound: ["Principal Office", "Office of Student Services"]
func LoadRoutingFile(path string) (RoutingConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return RoutingConfig{}, fmt.Errorf("read routing table: %w", err)
	}
	var cfg RoutingConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RoutingConfig{}, fmt.Errorf("parse routing table: %w", err)
	}
	if len(cfg.Routes) == 0 {
		return RoutingConfig{}, fmt.Errorf("routing table %s defines no routes", path)
	}
	return cfg, nil
}
