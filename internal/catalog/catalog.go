// Package catalog holds the clinic's service catalog: the bookable service
// types, their suggested prices, and the warranty rules attached to them.
package catalog

import (
	"fmt"
	"strings"
)

// Service is one entry of the catalog.
type Service struct {
	Name                string `json:"name"`
	SuggestedPriceCents int64  `json:"suggested_price_cents"`
	// TriggersWarranty marks services whose completion starts or renews a
	// warranty period.
	TriggersWarranty bool `json:"triggers_warranty"`
}

// Catalog is configuration data: read once at startup, changed only through
// the settings endpoint.
type Catalog struct {
	Services []Service `json:"services"`
	// WarrantyApplicable names the single service that may be rendered
	// free of charge while a warranty is active. It is a narrower notion
	// than TriggersWarranty: several services can renew the warranty, only
	// this one consumes it.
	WarrantyApplicable string `json:"warranty_applicable"`
}

// Default returns the catalog the clinic operates with out of the box.
func Default() *Catalog {
	return &Catalog{
		Services: []Service{
			{Name: "Evaluación", SuggestedPriceCents: 0},
			{Name: "Diseño", SuggestedPriceCents: 50000},
			{Name: "Aplicación", SuggestedPriceCents: 250000, TriggersWarranty: true},
			{Name: "Correcciones", SuggestedPriceCents: 0, TriggersWarranty: true},
			{Name: "Retoque", SuggestedPriceCents: 80000, TriggersWarranty: true},
		},
		WarrantyApplicable: "Correcciones",
	}
}

// Lookup finds a service by name. Matching is exact after trimming spaces.
func (c *Catalog) Lookup(name string) (Service, bool) {
	name = strings.TrimSpace(name)
	for _, s := range c.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// Contains reports whether name is a catalog service.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// TriggersWarranty reports whether completing a visit of this service starts
// or renews a warranty period.
func (c *Catalog) TriggersWarranty(name string) bool {
	s, ok := c.Lookup(name)
	return ok && s.TriggersWarranty
}

// IsWarrantyApplicable reports whether this service may be rendered free
// under an active warranty.
func (c *Catalog) IsWarrantyApplicable(name string) bool {
	return strings.TrimSpace(name) == c.WarrantyApplicable
}

// Validate checks the catalog is internally consistent before it is saved.
func (c *Catalog) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("catalog: no services configured")
	}

	seen := make(map[string]struct{}, len(c.Services))
	for _, s := range c.Services {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("catalog: service with empty name")
		}
		if s.SuggestedPriceCents < 0 {
			return fmt.Errorf("catalog: service %q has negative price", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("catalog: duplicate service %q", name)
		}
		seen[name] = struct{}{}
	}

	if c.WarrantyApplicable != "" {
		if _, ok := c.Lookup(c.WarrantyApplicable); !ok {
			return fmt.Errorf("catalog: warranty-applicable service %q not in catalog", c.WarrantyApplicable)
		}
	}

	return nil
}
