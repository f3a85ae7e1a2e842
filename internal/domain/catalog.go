// internal/domain/catalog.go
package domain

// Category code tables. The two-letter codes are part of the data
// contract with the persistence layer and the import tooling; do not
// rename them.

// StyleChoice pairs a category code with its display label.
type StyleChoice struct {
	Code  string
	Label string
}

var StyleChoices = []StyleChoice{
	{"gi", "Gi"},
	{"ng", "Nogi"},
	{"ap", "Apparel"},
	{"ac", "Accessories"},
}

var TypeChoicesByStyle = map[string][]StyleChoice{
	"gi": {
		{"gi", "Gi (full set)"},
		{"tr", "Trousers"},
		{"jk", "Jacket"},
		{"bt", "Belt"},
	},
	"ng": {
		{"rg", "Rashguard"},
		{"dk", "Shorts"},
		{"ck", "Spats"},
	},
	"ap": {
		{"te", "Tee"},
		{"ho", "Hoodie"},
		{"jg", "Joggers"},
		{"cn", "Crewneck"},
		{"br", "Bra"},
		{"jk", "Jacket"},
		{"bg", "Bag"},
	},
	"ac": {
		{"bg", "Bag"},
		{"ft", "Finger Tape"},
		{"bo", "Bottle"},
	},
}

var SubtypeChoicesByType = map[string][]StyleChoice{
	"tr": {
		{"tw", "Twill"},
		{"rs", "Ripstop"},
	},
	"rg": {
		{"ss", "Short Sleeve"},
		{"ls", "Long Sleeve"},
		{"rt", "Rolling Tee"},
	},
	"dk": {
		{"bs", "Board Shorts"},
		{"dl", "Double Layer"},
		{"vt", "Vale Tudo"},
	},
}

var AgeChoices = []StyleChoice{
	{"adult", "Adult"},
	{"kids", "Kids"},
}

var GenderChoices = []StyleChoice{
	{"male", "Male"},
	{"female", "Female"},
}

// SizeChoices is ordered smallest to largest within each sizing system:
// alpha sizes, adult gi (A*), female gi (F*), kids gi (M*).
var SizeChoices = []string{
	"XXS", "XS", "S", "M", "L", "XL", "XXL",
	"A0", "A1", "A1L", "A2", "A2L", "A3", "A3L", "A4",
	"F0", "F1", "F2", "F3", "F4",
	"M000", "M00", "M0", "M1", "M2", "M3", "M4",
}

// SizeOrder maps a size code to its sort index. Unknown sizes sort last.
var SizeOrder = buildSizeOrder()

func buildSizeOrder() map[string]int {
	m := make(map[string]int, len(SizeChoices))
	for i, code := range SizeChoices {
		m[code] = i
	}
	return m
}

// SizeRank returns the sort index for a size code, pushing unknown
// codes to the end.
func SizeRank(size string) int {
	if idx, ok := SizeOrder[size]; ok {
		return idx
	}
	return len(SizeChoices)
}

// TypeChoices flattens the per-style tables, de-duplicating codes that
// appear under more than one style (e.g. "jk", "bg").
func TypeChoices() []StyleChoice {
	seen := make(map[string]bool)
	var out []StyleChoice
	for _, style := range StyleChoices {
		for _, tc := range TypeChoicesByStyle[style.Code] {
			if seen[tc.Code] {
				continue
			}
			seen[tc.Code] = true
			out = append(out, tc)
		}
	}
	return out
}

// SubtypeChoices flattens the per-type subtype tables.
func SubtypeChoices() []StyleChoice {
	seen := make(map[string]bool)
	var out []StyleChoice
	for _, tcs := range [][]StyleChoice{SubtypeChoicesByType["tr"], SubtypeChoicesByType["rg"], SubtypeChoicesByType["dk"]} {
		for _, sc := range tcs {
			if seen[sc.Code] {
				continue
			}
			seen[sc.Code] = true
			out = append(out, sc)
		}
	}
	return out
}

// ValidStyle reports whether code is a known style code.
func ValidStyle(code string) bool {
	for _, c := range StyleChoices {
		if c.Code == code {
			return true
		}
	}
	return false
}

// ValidType reports whether code is a known type code.
func ValidType(code string) bool {
	for _, c := range TypeChoices() {
		if c.Code == code {
			return true
		}
	}
	return false
}

// ValidSubtype reports whether code is a known subtype code.
func ValidSubtype(code string) bool {
	for _, c := range SubtypeChoices() {
		if c.Code == code {
			return true
		}
	}
	return false
}

// ValidAge reports whether code is a known age code.
func ValidAge(code string) bool {
	for _, c := range AgeChoices {
		if c.Code == code {
			return true
		}
	}
	return false
}

// SimplifyType buckets a type code into the four reporting categories
// used by the size-mix and health reports.
func SimplifyType(typeCode string) string {
	switch typeCode {
	case "gi":
		return "gi"
	case "rg":
		return "rg"
	case "dk":
		return "dk"
	default:
		return "other"
	}
}

// CoreSizes lists the always-stocked sizes per reporting category.
var CoreSizes = map[string][]string{
	"gi":    {"A1", "A2", "F1", "F2"},
	"rg":    {"S", "M", "L"},
	"dk":    {"S", "M", "L"},
	"other": {"S", "M", "L"},
}

// Validate rejects filters that reference unknown category codes. An
// unrecognized code is a caller bug, not an empty result set.
func (f ProductFilter) Validate() error {
	if f.Style != "" && !ValidStyle(f.Style) {
		return ErrInvalidFilter
	}
	if f.Type != "" && !ValidType(f.Type) {
		return ErrInvalidFilter
	}
	if f.Subtype != "" && !ValidSubtype(f.Subtype) {
		return ErrInvalidFilter
	}
	if f.Age != "" && !ValidAge(f.Age) {
		return ErrInvalidFilter
	}
	return nil
}
