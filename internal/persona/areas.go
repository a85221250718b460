package persona

import "strings"

// Business areas used to tag requests for prompt context. Detection feeds
// prompt rendering only; classification routing ignores it.
const (
	AreaMarketing  = "marketing"
	AreaSales      = "sales"
	AreaDelivery   = "delivery"
	AreaOperations = "operations"
	AreaFinance    = "finance"
	AreaProduct    = "product"
	AreaTeam       = "team"
)

var areaOrder = []string{
	AreaMarketing, AreaSales, AreaDelivery, AreaOperations,
	AreaFinance, AreaProduct, AreaTeam,
}

var areaKeywords = map[string][]string{
	AreaMarketing:  {"marketing", "content", "brand", "campaign", "seo", "audience"},
	AreaSales:      {"sales", "lead", "pipeline", "outreach", "client", "deal", "proposal"},
	AreaDelivery:   {"delivery", "deliverable", "deadline", "shipping", "project work"},
	AreaOperations: {"operations", "process", "workflow", "automation", "admin"},
	AreaFinance:    {"finance", "invoice", "revenue", "pricing", "budget", "cash"},
	AreaProduct:    {"product", "feature", "roadmap", "development", "bug"},
	AreaTeam:       {"team", "hiring", "contractor", "delegate", "onboarding"},
}

// DetectAreas returns the business areas mentioned in text, in a fixed order
func DetectAreas(text string) []string {
	lower := strings.ToLower(text)
	var areas []string
	for _, area := range areaOrder {
		for _, keyword := range areaKeywords[area] {
			if strings.Contains(lower, keyword) {
				areas = append(areas, area)
				break
			}
		}
	}
	return areas
}
