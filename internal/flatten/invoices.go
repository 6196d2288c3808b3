package flatten

import (
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
)

// InvoicesTable holds one row per invoice.
const InvoicesTable = "INVOICES"

func flattenInvoices(records []alvys.Record, insertedAt time.Time) []Output {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			"ID":             str(rec["Id"], 100),
			"INVOICE_NUMBER": str(rec["InvoiceNumber"], 100),
			"INVOICE_STATUS": str(rec["Status"], 50),
			"LOAD_ID":        str(get(rec, "Load", "Id"), 100),
			"LOAD_NUMBER":    str(get(rec, "Load", "LoadNumber"), 100),
			"CUSTOMER_ID":    str(get(rec, "Customer", "Id"), 100),
			"CUSTOMER_NAME":  str(get(rec, "Customer", "Name"), 200),
			"AMOUNT":         num(get(rec, "Amount", "Amount")),
			"BALANCE":        num(get(rec, "Balance", "Amount")),
			"CURRENCY":       str(get(rec, "Amount", "Currency"), 10),
			"INVOICED_DTTM":  timestamp(rec["InvoicedDate"]),
			"DUE_DTTM":       timestamp(rec["DueDate"]),
			"PAID_DTTM":      timestamp(rec["PaidDate"]),
			"UPDATED_DTTM":   timestamp(rec["UpdatedAt"]),
			"FILE_ID":        fileID(rec),
			"INSERTED_DTTM":  insertedAt,
		})
	}
	return []Output{{Table: InvoicesTable, Rows: rows}}
}
