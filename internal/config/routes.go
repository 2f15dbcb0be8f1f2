package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRoutes reads an ordered route list from a YAML file of the form
//
//	routes:
//	  - key: chigasaki
//	    url: https://...
func LoadRoutes(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}

	var rf routesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	if len(rf.Routes) == 0 {
		return nil, fmt.Errorf("routes file %s lists no routes", path)
	}
	return rf.Routes, nil
}
