package plan

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalog mirrors the on-disk catalog layout:
//
//	plans:
//	  premium:
//	    name: Premium
//	    limits:
//	      admins: 5
//	    features: [inventory, analytics]
type yamlCatalog struct {
	Plans map[string]yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	Name     string           `yaml:"name"`
	Limits   map[string]int64 `yaml:"limits"`
	Features []string         `yaml:"features"`
}

// LoadCatalogFile reads a plan catalog from a YAML file. Every tier key
// must be a known tier and the entry tier must be present, since it is
// the fail-closed fallback for unknown plan values.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog builds a catalog from YAML bytes.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.Join(ErrInvalidCatalog, errors.New("no plans defined"))
	}

	plans := make(map[Tier]Plan, len(doc.Plans))
	for key, yp := range doc.Plans {
		tier := Tier(key)
		if !tier.Valid() {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("unknown tier %q", key))
		}

		limits := make(map[Resource]int64, len(yp.Limits))
		for res, limit := range yp.Limits {
			if limit < Unlimited {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %q: resource %q has invalid limit %d", key, res, limit))
			}
			limits[Resource(res)] = limit
		}

		features := make([]Feature, 0, len(yp.Features))
		for _, f := range yp.Features {
			features = append(features, Feature(f))
		}

		plans[tier] = Plan{Name: yp.Name, Limits: limits, Features: features}
	}

	if _, ok := plans[TierEntry]; !ok {
		return nil, errors.Join(ErrInvalidCatalog, errors.New("entry tier is required"))
	}

	return NewCatalog(plans), nil
}
