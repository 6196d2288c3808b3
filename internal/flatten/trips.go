package flatten

import (
	"fmt"
	"time"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/alvys"
)

const (
	// TripsTable holds one row per trip.
	TripsTable = "TRIPS"
	// TripStopsTable holds one row per stop, child of TRIPS.
	TripStopsTable = "TRIP_STOPS"
)

func flattenTrips(records []alvys.Record, insertedAt time.Time) []Output {
	tripRows := make([]Row, 0, len(records))
	var stopRows []Row

	for _, rec := range records {
		tripRows = append(tripRows, flattenTrip(rec, insertedAt))
		stopRows = append(stopRows, flattenStops(rec, insertedAt)...)
	}

	return []Output{
		{Table: TripsTable, Rows: tripRows},
		{Table: TripStopsTable, Rows: stopRows},
	}
}

func flattenTrip(rec alvys.Record, insertedAt time.Time) Row {
	return Row{
		"ID":                     str(rec["Id"], 100),
		"TRIP_NUMBER":            str(rec["TripNumber"], 100),
		"TRIP_STATUS":            str(rec["Status"], 50),
		"LOAD_NUMBER":            str(rec["LoadNumber"], 100),
		"TENDER_AS":              str(rec["TenderAs"], 50),
		"TOTAL_MILEAGE":          num(get(rec, "TotalMileage", "Value")),
		"MILEAGE_SOURCE":         str(get(rec, "TotalMileage", "Source"), 50),
		"EMPTY_MILEAGE":          num(get(rec, "EmptyMileage", "Value")),
		"LOADED_MILEAGE":         num(get(rec, "LoadedMileage", "Value")),
		"PICKUP_DTTM":            timestamp(rec["PickupDate"]),
		"DELIVERY_DTTM":          timestamp(rec["DeliveryDate"]),
		"PICKED_UP_DTTM":         timestamp(rec["PickedUpAt"]),
		"DELIVERED_DTTM":         timestamp(rec["DeliveredAt"]),
		"RELEASED_DTTM":          timestamp(rec["ReleasedAt"]),
		"TRIP_VALUE":             num(get(rec, "TripValue", "Amount")),
		"TRUCK_ID":               str(get(rec, "Truck", "Id"), 100),
		"TRUCK_FLEET_ID":         str(get(rec, "Truck", "Fleet", "Id"), 100),
		"TRUCK_FLEET_NAME":       str(get(rec, "Truck", "Fleet", "Name"), 100),
		"TRAILER_ID":             str(get(rec, "Trailer", "Id"), 100),
		"TRAILER_TYPE":           str(get(rec, "Trailer", "Type"), 50),
		"DRIVER1_ID":             str(get(rec, "Driver1", "Id"), 100),
		"DRIVER1_TYPE":           str(get(rec, "Driver1", "Type"), 50),
		"DRIVER2_ID":             str(get(rec, "Driver2", "Id"), 100),
		"DRIVER2_TYPE":           str(get(rec, "Driver2", "Type"), 50),
		"RELEASED_BY":            str(rec["ReleasedBy"], 100),
		"DISPATCHED_BY":          str(rec["DispatchedBy"], 100),
		"DISPATCHER_ID":          str(rec["DispatcherId"], 100),
		"IS_CARRIER_PAY_ON_HOLD": boolInt(rec["CarrierPayOnHold"]),
		"CARRIER_ID":             str(get(rec, "Carrier", "Id"), 100),
		"CARRIER_INVOICE":        str(get(rec, "Carrier", "CarrierInvoiceNumber"), 100),
		"CARRIER_RATE":           num(get(rec, "Carrier", "Rate", "Amount")),
		"CARRIER_LINEHAUL":       num(get(rec, "Carrier", "Linehaul", "Amount")),
		"CARRIER_FUEL":           num(get(rec, "Carrier", "Fuel", "Amount")),
		"CARRIER_TOTAL_PAYABLE":  num(get(rec, "Carrier", "TotalPayable", "Amount")),
		"UPDATED_DTTM":           timestamp(rec["UpdatedAt"]),
		"IS_DELETED":             boolInt(rec["IsDeleted"]),
		"FILE_ID":                fileID(rec),
		"INSERTED_DTTM":          insertedAt,
	}
}

func flattenStops(rec alvys.Record, insertedAt time.Time) []Row {
	tripID := str(rec["Id"], 100)
	tripNum := str(rec["TripNumber"], 100)

	stops, _ := rec["Stops"].([]interface{})
	rows := make([]Row, 0, len(stops))
	for i, raw := range stops {
		stop, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		seq := i + 1

		// Synthesize a stop id when the API omits one; sequence within the
		// trip keeps it stable across pages of the same run.
		id := str(stop["Id"], 100)
		if id == nil {
			id = fmt.Sprintf("%v_%d", tripID, seq)
		}

		earliest := stop["AppointmentDate"]
		if earliest == nil {
			earliest = get(stop, "StopWindow", "Begin")
		}

		rows = append(rows, Row{
			"ID":                        id,
			"TRIP_ID":                   tripID,
			"TRIP_NUMBER":               tripNum,
			"STOP_SEQUENCE":             seq,
			"IS_APPOINTMENT_REQUESTED":  boolInt(stop["AppointmentRequested"]),
			"IS_APPOINTMENT_CONFIRMED":  boolInt(stop["AppointmentConfirmed"]),
			"EARLIEST_APPOINTMENT_DTTM": timestamp(earliest),
			"LATEST_APPOINTMENT_DTTM":   timestamp(get(stop, "StopWindow", "End")),
			"STREET_ADDRESS":            str(get(stop, "Address", "Street"), 200),
			"CITY":                      str(get(stop, "Address", "City"), 100),
			"STATE_PROVINCE":            str(get(stop, "Address", "State"), 50),
			"POSTAL_CD":                 str(get(stop, "Address", "ZipCode"), 20),
			"LATITUDE":                  num(get(stop, "Coordinates", "Latitude")),
			"LONGITUDE":                 num(get(stop, "Coordinates", "Longitude")),
			"STOP_STATUS":               str(stop["Status"], 50),
			"STOP_TYPE":                 str(stop["StopType"], 50),
			"STOP_SCHEDULE_TYPE":        str(stop["ScheduleType"], 50),
			"LOADING_TYPE":              str(stop["LoadingType"], 50),
			"ARRIVED_DTTM":              timestamp(stop["ArrivedAt"]),
			"DEPARTED_DTTM":             timestamp(stop["DepartedAt"]),
			"LOC_ID":                    str(stop["CompanyNumber"], 100),
			"LOC_NAME":                  str(stop["CompanyName"], 200),
			"FILE_ID":                   fileID(rec),
			"INSERTED_DTTM":             insertedAt,
		})
	}
	return rows
}
