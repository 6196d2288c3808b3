// Package flatten turns raw exported entity records into relational rows.
// Each entity has one deterministic flattening function; nested objects are
// pulled up into named columns and every row carries the batch FILE_ID plus
// an INSERTED_DTTM audit timestamp.
package flatten

import (
	"fmt"
	"strings"
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// Row is one flattened relational row, keyed by column name.
type Row map[string]interface{}

// Output is the rows destined for one table. A single entity may fan out to
// multiple tables (trips produce trip and stop rows).
type Output struct {
	Table string
	Rows  []Row
}

// Flatten maps one entity's raw records to its table rows.
func Flatten(entity domain.Entity, records []alvys.Record, insertedAt time.Time) ([]Output, error) {
	switch entity {
	case domain.EntityTrips:
		return flattenTrips(records, insertedAt), nil
	case domain.EntityLoads:
		return flattenLoads(records, insertedAt), nil
	case domain.EntityInvoices:
		return flattenInvoices(records, insertedAt), nil
	case domain.EntityDrivers, domain.EntityTrucks, domain.EntityTrailers,
		domain.EntityCustomers, domain.EntityCarriers:
		return flattenActive(entity, records, insertedAt), nil
	}
	return nil, fmt.Errorf("no flattener for entity %q", entity)
}

// get walks a nested path of JSON objects, returning nil if any hop is
// missing or not an object.
func get(rec map[string]interface{}, path ...string) interface{} {
	var cur interface{} = rec
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// str normalizes a value to a trimmed, length-capped string column value.
// Empty and missing values become NULL.
func str(v interface{}, maxLen int) interface{} {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return nil
	}
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// num normalizes a value to a numeric column value (JSON numbers decode as
// float64). Non-numeric values become NULL.
func num(v interface{}) interface{} {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return nil
}

// boolInt maps a JSON boolean to the 0/1 integer columns the schema uses.
func boolInt(v interface{}) int {
	if b, ok := v.(bool); ok && b {
		return 1
	}
	return 0
}

// timestamp parses ISO-8601 strings into time.Time column values. Values
// that fail to parse become NULL rather than aborting the batch.
func timestamp(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return nil
}

// fileID extracts the run identifier stamped onto every record at export
// time.
func fileID(rec alvys.Record) interface{} {
	return str(rec["FILE_ID"], 50)
}
