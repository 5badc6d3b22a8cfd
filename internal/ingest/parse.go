package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/collegedir/collegedir/internal/models"
)

// minEstablishedYear is the earliest founding year accepted as plausible.
const minEstablishedYear = 1800

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()./-]*[0-9]$`)

type parser struct {
	validate *validator.Validate
	now      func() time.Time
}

func newParser(now func() time.Time) *parser {
	return &parser{validate: validator.New(), now: now}
}

// parse turns a raw record into a typed record. It returns every problem found
// rather than stopping at the first, missing required fields first. A record
// that failed to decode reports only the decode error.
func (p *parser) parse(raw RawRecord) (*models.CollegeRecord, []string) {
	// Fields of a record that failed to decode are not trustworthy.
	if raw.Err != nil {
		return nil, []string{raw.Err.Error()}
	}

	var problems []string

	for _, f := range RequiredFields {
		if raw.Fields[f] == "" {
			problems = append(problems, "missing "+f)
		}
	}

	rec := &models.CollegeRecord{
		Name:     raw.Fields[FieldName],
		Category: raw.Fields[FieldCategory],
		Type:     raw.Fields[FieldType],
		District: raw.Fields[FieldDistrict],
		City:     raw.Fields[FieldCity],
	}

	problems = appendErr(problems, checkLen(FieldName, rec.Name, maxNameLen))
	problems = appendErr(problems, checkLen(FieldCategory, rec.Category, maxLabelLen))
	problems = appendErr(problems, checkLen(FieldType, rec.Type, maxLabelLen))
	problems = appendErr(problems, checkLen(FieldDistrict, rec.District, maxLabelLen))
	problems = appendErr(problems, checkLen(FieldCity, rec.City, maxLabelLen))

	var err error

	rec.Autonomous, err = parseTriState(raw.Fields, FieldAutonomous)
	problems = appendErr(problems, err)

	rec.Minority, err = parseTriState(raw.Fields, FieldMinority)
	problems = appendErr(problems, err)

	rec.HostelAvailable, err = parseTriState(raw.Fields, FieldHostelAvailable)
	problems = appendErr(problems, err)

	rec.EstablishedYear, err = parseYear(raw.Fields, p.now().Year())
	problems = appendErr(problems, err)

	rec.Phone, err = p.optional(raw.Fields, FieldPhone, maxPhoneLen, p.checkPhone)
	problems = appendErr(problems, err)

	rec.Email, err = p.optional(raw.Fields, FieldEmail, maxEmailLen, p.checkEmail)
	problems = appendErr(problems, err)

	rec.Website, err = p.optional(raw.Fields, FieldWebsite, maxWebsiteLen, p.checkWebsite)
	problems = appendErr(problems, err)

	rec.Address, err = p.optional(raw.Fields, FieldAddress, maxAddressLen, nil)
	problems = appendErr(problems, err)

	rec.Pincode, err = p.optional(raw.Fields, FieldPincode, 6, p.checkPincode)
	problems = appendErr(problems, err)

	if len(problems) > 0 {
		return nil, problems
	}

	return rec, nil
}

// parseTriState accepts case-insensitive true/false. An absent value stays unknown.
func parseTriState(fields map[string]string, field string) (*bool, error) {
	v, ok := fields[field]
	if !ok {
		return nil, nil
	}

	switch {
	case strings.EqualFold(v, "true"):
		b := true
		return &b, nil
	case strings.EqualFold(v, "false"):
		b := false
		return &b, nil
	default:
		return nil, fmt.Errorf("invalid %s %q: must be true or false", field, v)
	}
}

// parseYear accepts a 4-digit year between minEstablishedYear and the current year.
func parseYear(fields map[string]string, currentYear int) (*int, error) {
	v, ok := fields[FieldEstablishedYear]
	if !ok {
		return nil, nil
	}

	if len(v) != 4 || strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return nil, fmt.Errorf("invalid %s %q: must be a 4-digit year", FieldEstablishedYear, v)
	}

	year, _ := strconv.Atoi(v)

	switch {
	case year > currentYear:
		return nil, fmt.Errorf("invalid %s %d: year is in the future", FieldEstablishedYear, year)
	case year < minEstablishedYear:
		return nil, fmt.Errorf("invalid %s %d: year is before %d", FieldEstablishedYear, year, minEstablishedYear)
	}

	return &year, nil
}

func (p *parser) optional(fields map[string]string, field string, maxLen int, check func(string) bool) (*string, error) {
	v, ok := fields[field]
	if !ok {
		return nil, nil
	}

	if err := checkLen(field, v, maxLen); err != nil {
		return nil, err
	}

	if check != nil && !check(v) {
		return nil, fmt.Errorf("invalid %s %q", field, v)
	}

	return &v, nil
}

func (p *parser) checkPhone(v string) bool {
	return phonePattern.MatchString(v)
}

func (p *parser) checkEmail(v string) bool {
	return p.validate.Var(v, "email") == nil
}

// checkWebsite accepts an absolute URL or a bare host name such as www.example.edu.
func (p *parser) checkWebsite(v string) bool {
	if p.validate.Var(v, "http_url") == nil {
		return true
	}

	host, _, _ := strings.Cut(v, "/")

	return !strings.Contains(v, "://") && p.validate.Var(host, "fqdn") == nil
}

func (p *parser) checkPincode(v string) bool {
	return p.validate.Var(v, "number,len=6") == nil
}

func checkLen(field, v string, maxLen int) error {
	if len(v) > maxLen {
		return models.ErrFieldTooLong(field, maxLen)
	}

	return nil
}

func appendErr(problems []string, err error) []string {
	if err == nil {
		return problems
	}

	return append(problems, err.Error())
}
