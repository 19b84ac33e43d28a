package catalog

import "strings"

// Family is a coarse processor label derived from a free-text processor description.
type Family string

const (
	FamilyIntelI9      Family = "Intel i9"
	FamilyIntelI7      Family = "Intel i7"
	FamilyIntelI5      Family = "Intel i5"
	FamilyIntelI3      Family = "Intel i3"
	FamilyRyzen9       Family = "Ryzen 9"
	FamilyRyzen7       Family = "Ryzen 7"
	FamilyRyzen5       Family = "Ryzen 5"
	FamilyRyzen3       Family = "Ryzen 3"
	FamilyAppleSilicon Family = "Apple Silicon"
	FamilyCeleron      Family = "Intel Celeron"
	FamilyPentium      Family = "Intel Pentium"
	FamilyOther        Family = "Other"
)

type familyRule struct {
	family  Family
	needles []string
}

// familyRules are evaluated in order and the first hit wins, so "i7" beats "ryzen 5"
// when a malformed description carries both.
var familyRules = []familyRule{
	{FamilyIntelI9, []string{"i9"}},
	{FamilyIntelI7, []string{"i7"}},
	{FamilyIntelI5, []string{"i5"}},
	{FamilyIntelI3, []string{"i3"}},
	{FamilyRyzen9, []string{"ryzen 9", "r9"}},
	{FamilyRyzen7, []string{"ryzen 7", "r7"}},
	{FamilyRyzen5, []string{"ryzen 5", "r5"}},
	{FamilyRyzen3, []string{"ryzen 3", "r3"}},
	{FamilyAppleSilicon, []string{"m1", "m2", "m3", "m4"}},
	{FamilyCeleron, []string{"celeron"}},
	{FamilyPentium, []string{"pentium"}},
}

// ClassifyProcessor maps a raw processor string onto its family. Empty or
// unrecognised input yields FamilyOther.
func ClassifyProcessor(raw string) Family {
	lower := strings.ToLower(raw)
	for _, rule := range familyRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.family
			}
		}
	}
	return FamilyOther
}
