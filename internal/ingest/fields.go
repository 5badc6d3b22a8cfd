// Package ingest reconciles uploaded college batches against the directory.
//
// An upload is decoded into raw records (CSV or JSON envelope), each record is
// parsed and validated on its own, and valid records are upserted by natural
// key. A bad record is reported and skipped; it never aborts the batch.
package ingest

// Column names shared by the CSV header, the JSON object keys and the template.
const (
	FieldName            = "name"
	FieldCategory        = "category"
	FieldDistrict        = "district"
	FieldCity            = "city"
	FieldType            = "type"
	FieldAutonomous      = "autonomous"
	FieldMinority        = "minority"
	FieldHostelAvailable = "hostel_available"
	FieldEstablishedYear = "established_year"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldWebsite         = "website"
	FieldAddress         = "address"
	FieldPincode         = "pincode"
)

// Columns lists every recognised field in template order.
var Columns = []string{
	FieldName, FieldCategory, FieldDistrict, FieldCity, FieldType,
	FieldAutonomous, FieldMinority, FieldHostelAvailable, FieldEstablishedYear,
	FieldPhone, FieldEmail, FieldWebsite, FieldAddress, FieldPincode,
}

// RequiredFields must be present and non-empty for a record to be ingestable,
// in the order missing fields are reported.
var RequiredFields = []string{FieldName, FieldCategory, FieldType, FieldDistrict, FieldCity}

// Field length limits.
const (
	maxNameLen    = 255
	maxLabelLen   = 100
	maxPhoneLen   = 32
	maxEmailLen   = 254
	maxWebsiteLen = 2048
	maxAddressLen = 500
)

// RawRecord is one undecoded record: trimmed, non-empty values keyed by
// lower-case field name. Err is set when the envelope could be read but this
// record could not be turned into fields at all.
type RawRecord struct {
	Fields map[string]string
	Err    error
}

func isKnownField(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}

	return false
}
