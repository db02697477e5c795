// Package regulation maps jurisdictions onto the policy templates that
// satisfy their privacy law, and exposes the template catalog.
package regulation

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"compliance-panel/internal/jurisdiction/models"
)

// DefaultTemplate is recommended for unknown and unmapped countries.
const DefaultTemplate = models.TemplatePrivacyPolicy

var euMembers = []models.CountryCode{
	"de", "fr", "it", "es", "nl", "be", "at", "dk", "fi", "se", "ie", "pt", "gr", "lu",
	"cy", "mt", "si", "sk", "ee", "lv", "lt", "pl", "cz", "hu", "ro", "bg", "hr",
}

// table is built once at init and never mutated afterwards.
var table = buildTable()

func buildTable() map[models.CountryCode][]models.TemplateID {
	t := map[models.CountryCode][]models.TemplateID{
		"uk": {models.TemplateGDPR},
		"us": {models.TemplateCCPA},
		"ca": {models.TemplatePIPEDA},
		"th": {models.TemplatePDPAThailand},
		"sg": {models.TemplatePDPASingapore},
		"au": {models.TemplatePrivacyActAustralia},
		"br": {models.TemplateLGPD},
	}
	for _, member := range euMembers {
		t[member] = []models.TemplateID{models.TemplateGDPR}
	}
	return t
}

func init() {
	if err := validateTable(table, catalog); err != nil {
		panic("regulation: " + err.Error())
	}
}

func validateTable(t map[models.CountryCode][]models.TemplateID, defs []models.TemplateDefinition) error {
	known := lo.SliceToMap(defs, func(d models.TemplateDefinition) (models.TemplateID, struct{}) {
		return d.ID, struct{}{}
	})
	if _, ok := known[DefaultTemplate]; !ok {
		return fmt.Errorf("default template %q missing from catalog", DefaultTemplate)
	}
	for country, templates := range t {
		if models.NormalizeCountry(string(country)) != country || country.IsUnknown() {
			return fmt.Errorf("country key %q must be a lowercase two-letter code", country)
		}
		if len(templates) == 0 {
			return fmt.Errorf("country %q maps to no templates", country)
		}
		for _, id := range templates {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("country %q maps to unknown template %q", country, id)
			}
		}
	}
	return nil
}

// RecommendedTemplates returns the templates required in a jurisdiction.
// Unknown and unmapped countries get the generic privacy policy. The result
// is a fresh sorted slice the caller may keep or modify.
func RecommendedTemplates(country models.CountryCode) []models.TemplateID {
	templates, ok := table[country]
	if !ok {
		return []models.TemplateID{DefaultTemplate}
	}
	out := lo.Uniq(templates)
	slices.Sort(out)
	return out
}

// IsMapped reports whether the country has a dedicated regulation entry.
func IsMapped(country models.CountryCode) bool {
	_, ok := table[country]
	return ok
}

// Countries returns every mapped country in sorted order.
func Countries() []models.CountryCode {
	keys := lo.Keys(table)
	slices.Sort(keys)
	return keys
}
