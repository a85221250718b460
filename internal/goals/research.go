package goals

import "strings"

// researchPrompts maps each business area to analysis starting points the
// operator can turn into new goals
var researchPrompts = map[string][]string{
	"SALES": {
		"Analyze current sales funnel conversion rates",
		"Research competitor pricing strategies",
		"Identify new lead generation channels",
		"Explore partnership opportunities with complementary services",
		"Review client feedback for upselling opportunities",
	},
	"DELIVERY": {
		"Audit current project delivery times vs. estimates",
		"Identify most time-consuming manual processes",
		"Research automation tools for common tasks",
		"Analyze client satisfaction scores by project type",
		"Document knowledge gaps in team capabilities",
	},
	"PRODUCT": {
		"Analyze product usage patterns and pain points",
		"Research feature requests from existing users",
		"Competitive analysis of similar AI assistant tools",
		"Identify integration opportunities with popular business tools",
		"Evaluate technical debt impact on development speed",
	},
	"FINANCIAL": {
		"Analyze profit margins by client and project type",
		"Research pricing optimization opportunities",
		"Identify cost reduction opportunities in operations",
		"Evaluate ROI on marketing and sales activities",
		"Plan cash flow scenarios for next 6 months",
	},
	"TEAM": {
		"Assess current team capacity vs. demand",
		"Research contractor vs. employee cost-benefit analysis",
		"Identify skill gaps that limit business growth",
		"Evaluate remote work productivity metrics",
		"Plan succession strategies for key responsibilities",
	},
	"PROCESS": {
		"Map current business processes and identify bottlenecks",
		"Research business automation opportunities",
		"Analyze time allocation across different business functions",
		"Evaluate tool stack efficiency and integration gaps",
		"Document standard operating procedures gaps",
	},
}

// ResearchPrompts returns suggested research directions for an area, or nil
// for an unknown area
func ResearchPrompts(area string) []string {
	return researchPrompts[strings.ToUpper(strings.TrimSpace(area))]
}
