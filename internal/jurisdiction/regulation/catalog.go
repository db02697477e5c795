package regulation

import (
	"slices"

	"github.com/samber/lo"

	"compliance-panel/internal/jurisdiction/models"
)

// catalog lists the templates offered by the policy editor in display order.
// Regions for regulation templates are filled from the regulation table.
var catalog = withRegions([]models.TemplateDefinition{
	{
		ID:          models.TemplatePrivacyPolicy,
		Label:       "Privacy Policy",
		Description: "General privacy policy describing what data is collected and how it is used.",
		Icon:        "Shield",
	},
	{
		ID:          models.TemplateGDPR,
		Label:       "GDPR Compliance",
		Description: "Data protection notice for visitors in the European Union and United Kingdom.",
		Icon:        "Globe",
	},
	{
		ID:          models.TemplateCCPA,
		Label:       "CCPA Notice",
		Description: "California Consumer Privacy Act disclosures and opt-out rights.",
		Icon:        "UserCheck",
	},
	{
		ID:          models.TemplatePIPEDA,
		Label:       "PIPEDA (Canada)",
		Description: "Personal information handling under Canada's federal privacy law.",
		Icon:        "FileCheck",
	},
	{
		ID:          models.TemplatePDPAThailand,
		Label:       "PDPA (Thailand)",
		Description: "Consent and data subject rights under Thailand's Personal Data Protection Act.",
		Icon:        "FileCheck",
	},
	{
		ID:          models.TemplatePDPASingapore,
		Label:       "PDPA (Singapore)",
		Description: "Collection, use and disclosure rules under Singapore's PDPA.",
		Icon:        "FileCheck",
	},
	{
		ID:          models.TemplatePrivacyActAustralia,
		Label:       "Privacy Act (Australia)",
		Description: "Australian Privacy Principles notice for Australian users.",
		Icon:        "FileCheck",
	},
	{
		ID:          models.TemplateLGPD,
		Label:       "LGPD (Brazil)",
		Description: "Legal bases and data subject rights under Brazil's LGPD.",
		Icon:        "FileCheck",
	},
	{
		ID:          models.TemplateCookiePolicy,
		Label:       "Cookie Policy",
		Description: "Explains the cookies and trackers used on the site and how to manage them.",
		Icon:        "Cookie",
	},
	{
		ID:          models.TemplateTermsOfService,
		Label:       "Terms of Service",
		Description: "Rules and conditions for using the product or website.",
		Icon:        "FileText",
	},
})

func withRegions(defs []models.TemplateDefinition) []models.TemplateDefinition {
	for i := range defs {
		regions := lo.FilterMap(lo.Entries(table), func(e lo.Entry[models.CountryCode, []models.TemplateID], _ int) (models.CountryCode, bool) {
			return e.Key, slices.Contains(e.Value, defs[i].ID)
		})
		slices.Sort(regions)
		defs[i].Regions = regions
	}
	return defs
}

// Catalog returns a copy of every template definition in display order.
func Catalog() []models.TemplateDefinition {
	return lo.Map(catalog, func(d models.TemplateDefinition, _ int) models.TemplateDefinition {
		d.Regions = slices.Clone(d.Regions)
		return d
	})
}

// Lookup returns the definition for a template id.
func Lookup(id models.TemplateID) (models.TemplateDefinition, bool) {
	d, ok := lo.Find(catalog, func(d models.TemplateDefinition) bool { return d.ID == id })
	if !ok {
		return models.TemplateDefinition{}, false
	}
	d.Regions = slices.Clone(d.Regions)
	return d, true
}

// CatalogFor returns the full catalog with the cards recommended for the
// country flagged. Unknown countries get only the generic policy flagged.
func CatalogFor(country models.CountryCode) []models.TemplateCard {
	recommended := RecommendedTemplates(country)
	return lo.Map(Catalog(), func(d models.TemplateDefinition, _ int) models.TemplateCard {
		return models.TemplateCard{
			TemplateDefinition: d,
			Recommended:        slices.Contains(recommended, d.ID),
		}
	})
}
