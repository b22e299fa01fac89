// Package plancatalog loads the subscription plan catalog from YAML. The
// default catalog is embedded in the binary; deployments can point a config
// key at an external file to override it.
package plancatalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fiscus/internal/domain/billing"
)

//go:embed plans.yaml
var embeddedCatalog []byte

type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Limits   map[string]int `yaml:"limits"`
	Features []string       `yaml:"features"`
}

// Load parses the catalog at path, or the embedded default when path is empty.
func Load(path string) (*billing.PlanCatalog, error) {
	data := embeddedCatalog
	if path != "" {
		external, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan catalog %s: %w", path, err)
		}
		data = external
	}
	return parse(data)
}

func parse(data []byte) (*billing.PlanCatalog, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}

	plans := make([]*billing.Plan, 0, len(file.Plans))
	for _, entry := range file.Plans {
		limits := make(billing.QuotaTable, len(entry.Limits))
		for qt, limit := range entry.Limits {
			limits[billing.QuotaType(qt)] = limit
		}
		features := make(billing.FeatureFlagTable, len(entry.Features))
		for _, flag := range entry.Features {
			features[billing.FeatureFlag(flag)] = true
		}
		plan, err := billing.NewPlan(entry.ID, entry.Name, limits, features)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	catalog, err := billing.NewPlanCatalog(plans)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}
