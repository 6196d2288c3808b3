package flatten

import (
	"strings"
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// The five "active" entities (drivers, trucks, trailers, customers,
// carriers) are full snapshots with one table each, named after the entity.

// ActiveTable returns the target table for an active entity.
func ActiveTable(entity domain.Entity) string {
	return strings.ToUpper(entity.String())
}

func flattenActive(entity domain.Entity, records []alvys.Record, insertedAt time.Time) []Output {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		var row Row
		switch entity {
		case domain.EntityDrivers:
			row = flattenDriver(rec)
		case domain.EntityTrucks:
			row = flattenTruck(rec)
		case domain.EntityTrailers:
			row = flattenTrailer(rec)
		case domain.EntityCustomers:
			row = flattenCustomer(rec)
		case domain.EntityCarriers:
			row = flattenCarrier(rec)
		}
		row["FILE_ID"] = fileID(rec)
		row["INSERTED_DTTM"] = insertedAt
		rows = append(rows, row)
	}
	return []Output{{Table: ActiveTable(entity), Rows: rows}}
}

func flattenDriver(rec alvys.Record) Row {
	return Row{
		"ID":            str(rec["Id"], 100),
		"EMPLOYEE_ID":   str(rec["EmployeeId"], 100),
		"DRIVER_TYPE":   str(rec["Type"], 50),
		"SUBSIDIARY_ID": str(rec["SubsidiaryId"], 100),
		"ZIP_CODE":      str(get(rec, "Address", "ZipCode"), 20),
		"FLEET_ID":      str(get(rec, "Fleet", "Id"), 100),
		"FLEET_NAME":    str(get(rec, "Fleet", "Name"), 100),
		"CREATED_DTTM":  timestamp(rec["CreatedAt"]),
		"IS_ACTIVE":     boolInt(rec["IsActive"]),
		"HIRED_DTTM":    timestamp(rec["HiredAt"]),
	}
}

func flattenTruck(rec alvys.Record) Row {
	return Row{
		"ID":            str(rec["Id"], 100),
		"TRUCK_NUM":     str(rec["TruckNum"], 100),
		"TRUCK_STATUS":  str(rec["Status"], 50),
		"VIN_NUMBER":    str(rec["VinNumber"], 100),
		"YEAR":          str(rec["Year"], 10),
		"MAKE":          str(rec["Make"], 100),
		"MODEL":         str(rec["Model"], 100),
		"LICENSE_STATE": str(rec["LicenseState"], 50),
		"TRUCK_TYPE":    str(rec["TruckType"], 50),
		"SUBSIDIARY_ID": str(rec["SubsidiaryId"], 100),
		"FLEET_ID":      str(get(rec, "Fleet", "Id"), 100),
		"FLEET_NAME":    str(get(rec, "Fleet", "Name"), 100),
		"CREATED_DTTM":  timestamp(rec["CreatedAt"]),
	}
}

func flattenTrailer(rec alvys.Record) Row {
	return Row{
		"ID":             str(rec["Id"], 100),
		"TRAILER_NUM":    str(rec["TrailerNum"], 100),
		"TRAILER_TYPE":   str(rec["TrailerType"], 50),
		"TRAILER_STATUS": str(rec["Status"], 50),
		"CREATED_DTTM":   timestamp(rec["CreatedAt"]),
	}
}

func flattenCustomer(rec alvys.Record) Row {
	return Row{
		"ID":              str(rec["Id"], 100),
		"CUSTOMER_NAME":   str(rec["Name"], 200),
		"COMPANY_NUMBER":  str(rec["CompanyNumber"], 100),
		"CUSTOMER_TYPE":   str(rec["Type"], 50),
		"CUSTOMER_STATUS": str(rec["Status"], 50),
		"BILLING_ADDRESS": str(get(rec, "BillingAddress", "Street"), 200),
		"CITY":            str(get(rec, "BillingAddress", "City"), 100),
		"STATE_PROVINCE":  str(get(rec, "BillingAddress", "State"), 50),
		"POSTAL_CD":       str(get(rec, "BillingAddress", "ZipCode"), 20),
		"INVOICING_NAME":  str(get(rec, "InvoicingInformation", "InvoicingName"), 200),
		"INVOICING_ALIAS": str(get(rec, "InvoicingInformation", "InvoicingNameAlias"), 200),
		"CREATED_DTTM":    timestamp(rec["DateCreated"]),
	}
}

func flattenCarrier(rec alvys.Record) Row {
	return Row{
		"ID":             str(rec["Id"], 100),
		"CARRIER_NAME":   str(rec["Name"], 200),
		"EXTERNAL_NAME":  str(rec["ExternalName"], 200),
		"MC_NUM":         str(rec["McNum"], 50),
		"DOT_NUM":        str(rec["UsDotNum"], 50),
		"CARRIER_STATUS": str(rec["Status"], 50),
		"CARRIER_TYPE":   str(rec["Type"], 50),
		"CARRIER_SOURCE": str(rec["Source"], 50),
		"CREATED_DTTM":   timestamp(rec["CreatedAt"]),
		"UPDATED_DTTM":   timestamp(rec["UpdatedAt"]),
	}
}
