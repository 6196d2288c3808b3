package flatten

import (
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
)

// LoadsTable holds one row per load.
const LoadsTable = "LOADS"

func flattenLoads(records []alvys.Record, insertedAt time.Time) []Output {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			"ID":                str(rec["Id"], 100),
			"LOAD_NUMBER":       str(rec["LoadNumber"], 100),
			"LOAD_STATUS":       str(rec["Status"], 50),
			"REFERENCE_NUMBER":  str(rec["ReferenceNumber"], 100),
			"CUSTOMER_ID":       str(get(rec, "Customer", "Id"), 100),
			"CUSTOMER_NAME":     str(get(rec, "Customer", "Name"), 200),
			"EQUIPMENT_TYPE":    str(rec["EquipmentType"], 50),
			"COMMODITY":         str(rec["Commodity"], 200),
			"WEIGHT":            num(get(rec, "Weight", "Value")),
			"LINEHAUL":          num(get(rec, "Linehaul", "Amount")),
			"FUEL_SURCHARGE":    num(get(rec, "FuelSurcharge", "Amount")),
			"ACCESSORIALS":      num(get(rec, "Accessorials", "Amount")),
			"TOTAL_RATE":        num(get(rec, "TotalRate", "Amount")),
			"BILLING_STATUS":    str(rec["BillingStatus"], 50),
			"CREATED_DTTM":      timestamp(rec["CreatedAt"]),
			"UPDATED_DTTM":      timestamp(rec["UpdatedAt"]),
			"IS_DELETED":        boolInt(rec["IsDeleted"]),
			"FILE_ID":           fileID(rec),
			"INSERTED_DTTM":     insertedAt,
		})
	}
	return []Output{{Table: LoadsTable, Rows: rows}}
}
