package alvys

import (
	"github.com/PRichardsKSMTA/alvys-ingest/internal/dates"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// rangeFields maps each range-filtered entity to the filter field that
// carries the date window. Trips and loads filter on their update timestamp;
// invoices filter on the invoiced date and only include paid ones.
var rangeFields = map[domain.Entity]string{
	domain.EntityTrips:    "updatedAtRange",
	domain.EntityLoads:    "updatedAtRange",
	domain.EntityInvoices: "invoicedDateRange",
}

// staticFilters are the fixed search templates for entities with no date
// filter. These mirror what each search endpoint requires to return the
// full entity population.
var staticFilters = map[domain.Entity]map[string]interface{}{
	domain.EntityDrivers: {
		"name":       "",
		"employeeId": "",
		"fleetName":  "",
		"status":     []string{},
	},
	domain.EntityTrucks: {
		"truckNumber":    "",
		"fleetName":      "",
		"vinNumber":      "",
		"registeredName": "",
		"status":         []string{},
	},
	domain.EntityTrailers: {
		"status":        []string{},
		"trailerNumber": "",
		"fleetName":     "",
		"vinNumber":     "",
	},
	domain.EntityCustomers: {
		"statuses": []string{"Active", "Inactive", "Disabled"},
	},
	domain.EntityCarriers: {
		"status": []string{
			"Pending",
			"Active",
			"Expired Insurance",
			"Interested",
			"Invited",
			"Packet Sent",
			"Packet Completed",
		},
	},
}

// SearchFilter builds the base search body for one entity and window. The
// paginator merges page/pageSize on top of this.
func SearchFilter(entity domain.Entity, window dates.Window) map[string]interface{} {
	if entity.RangeFiltered() {
		filter := map[string]interface{}{
			rangeFields[entity]: map[string]string{
				"start": window.StartISO(),
				"end":   window.EndISO(),
			},
		}
		switch entity {
		case domain.EntityInvoices:
			filter["status"] = []string{"Paid"}
		default:
			// Trips and loads pull soft-deleted records too so downstream
			// sees deletions that happened inside the window.
			filter["status"] = []string{}
			filter["IncludeDeleted"] = true
		}
		return filter
	}

	template := staticFilters[entity]
	filter := make(map[string]interface{}, len(template))
	for k, v := range template {
		filter[k] = v
	}
	return filter
}
