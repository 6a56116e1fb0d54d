package schema

import "regexp"

// semanticFamily pairs a semantic type label with the name patterns that
// select it. Families are checked in order; the first match wins.
type semanticFamily struct {
	label   string
	pattern *regexp.Regexp
}

// geographicNamePattern also refines data types, so it gets its own name
// rather than living only inside the family table.
var geographicNamePattern = regexp.MustCompile(`(?i)(country|city|state|region|province|county|district|latitude|longitude|^lat$|^lng$|^lon$|location|address|postcode|postal|zip)`)

// semanticFamilies is the fixed ordered table of column-name regex
// families. Name matches take precedence over value heuristics.
var semanticFamilies = []semanticFamily{
	{"temporal", regexp.MustCompile(`(?i)(date|time|year|month|week|day|timestamp|created|updated|period|quarter)`)},
	{"geographic", geographicNamePattern},
	{"identifier", regexp.MustCompile(`(?i)(^id$|_id$|id$|key$|code$|uuid|identifier)`)},
	{"metric", regexp.MustCompile(`(?i)(amount|count|total|sum|price|cost|revenue|sales|profit|value|rate|ratio|score|gdp|inflation|population|income|salary|quantity|volume|weight|height|percent)`)},
	{"demographic", regexp.MustCompile(`(?i)(age|gender|sex|ethnicity|race|education|occupation|marital)`)},
}

// Value-shape patterns used to refine data types from a sample
var (
	booleanValuePattern = regexp.MustCompile(`(?i)^(true|false|yes|no|y|n|0|1)$`)
	isoCountryPattern   = regexp.MustCompile(`^[A-Z]{2,3}$`)
	latLongPattern      = regexp.MustCompile(`^-?\d{1,3}\.\d+\s*,\s*-?\d{1,3}\.\d+$`)
	streetPattern       = regexp.MustCompile(`(?i)\b(street|st\.|avenue|ave\.?|road|rd\.?|boulevard|blvd|lane|drive)\b`)
	allDigitsPattern    = regexp.MustCompile(`^\d+$`)
	emailPattern        = regexp.MustCompile(`@`)
	urlPattern          = regexp.MustCompile(`^https?://`)
	idNamePattern       = regexp.MustCompile(`(?i)(id|key|code)$`)
)

// entityKeyword maps a field-name substring to an entity type. Ordered by
// priority; the first hit across all field names decides.
type entityKeyword struct {
	tokens []string
	entity string
}

var entityKeywords = []entityKeyword{
	{[]string{"customer", "user", "client"}, "customer"},
	{[]string{"product", "item", "sku"}, "product"},
	{[]string{"transaction", "order", "sale", "purchase"}, "transaction"},
	{[]string{"employee", "staff"}, "employee"},
	{[]string{"location", "place"}, "location"},
}
