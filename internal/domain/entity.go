package domain

import (
	"fmt"
	"strings"
)

// Entity identifies one of the fixed set of Alvys business entities the
// pipeline exports.
type Entity string

const (
	EntityLoads     Entity = "loads"
	EntityTrips     Entity = "trips"
	EntityInvoices  Entity = "invoices"
	EntityDrivers   Entity = "drivers"
	EntityTrucks    Entity = "trucks"
	EntityTrailers  Entity = "trailers"
	EntityCustomers Entity = "customers"
	EntityCarriers  Entity = "carriers"
)

// AllEntities is the canonical export order. Client exports always iterate in
// this order regardless of how the request listed them, so sequencing and
// logs stay deterministic.
var AllEntities = []Entity{
	EntityLoads,
	EntityTrips,
	EntityInvoices,
	EntityDrivers,
	EntityTrucks,
	EntityTrailers,
	EntityCustomers,
	EntityCarriers,
}

// RangeFiltered reports whether this entity's search filter embeds the
// export date window. The remaining entities use fixed filter templates.
func (e Entity) RangeFiltered() bool {
	switch e {
	case EntityLoads, EntityTrips, EntityInvoices:
		return true
	}
	return false
}

// String returns the lowercase entity name.
func (e Entity) String() string {
	return string(e)
}

// ParseEntities expands a raw entity list ("all", mixed case, any order) into
// canonical order. Unknown names are rejected.
func ParseEntities(names []string) ([]Entity, error) {
	if len(names) == 0 {
		return AllEntities, nil
	}

	requested := make(map[Entity]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if name == "all" {
			return AllEntities, nil
		}
		e := Entity(name)
		found := false
		for _, known := range AllEntities {
			if known == e {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown entity %q", name)
		}
		requested[e] = true
	}

	out := make([]Entity, 0, len(requested))
	for _, e := range AllEntities {
		if requested[e] {
			out = append(out, e)
		}
	}
	return out, nil
}
