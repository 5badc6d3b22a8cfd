package models

// CollegeRecord is one parsed ingestion record. Required identity fields are
// plain strings; every optional field is a pointer so that "absent" can be
// told apart from a provided value during a partial update.
type CollegeRecord struct {
	Name     string
	Category string
	Type     string
	District string
	City     string

	Autonomous      *bool
	Minority        *bool
	HostelAvailable *bool
	EstablishedYear *int

	Contact
}

// NaturalKey returns the record's case-insensitive identity.
func (r *CollegeRecord) NaturalKey() string {
	return NaturalKey(r.Name, r.District, r.City)
}

// NewDetail builds the detail row inserted for a record with no existing match.
func (r *CollegeRecord) NewDetail() CollegeDetail {
	var d CollegeDetail
	r.ApplyTo(&d)

	return d
}

// ApplyTo overwrites the fields of d that the record provides. Fields the
// record leaves nil keep their existing value.
func (r *CollegeRecord) ApplyTo(d *CollegeDetail) {
	d.Name = r.Name
	d.Category = r.Category
	d.Type = r.Type
	d.District = r.District
	d.City = r.City

	setIfPresent(&d.Autonomous, r.Autonomous)
	setIfPresent(&d.Minority, r.Minority)
	setIfPresent(&d.HostelAvailable, r.HostelAvailable)
	setIfPresent(&d.EstablishedYear, r.EstablishedYear)

	setIfPresent(&d.Phone, r.Phone)
	setIfPresent(&d.Email, r.Email)
	setIfPresent(&d.Website, r.Website)
	setIfPresent(&d.Address, r.Address)
	setIfPresent(&d.Pincode, r.Pincode)
}

func setIfPresent[T any](dst **T, src *T) {
	if src == nil {
		return
	}

	v := *src
	*dst = &v
}
