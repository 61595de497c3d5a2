package analysis

import "strings"

// Rule maps a set of keywords to a fixed reply.
// A rule matches when the prompt contains any keyword, case-insensitively.
type Rule struct {
	Name     string
	Keywords []string
	Reply    string
}

// Matches reports whether prompt triggers r.
func (r Rule) Matches(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Responder answers prompts from an ordered rule table.
// The first matching rule wins; Fallback answers everything else.
type Responder struct {
	Rules    []Rule
	Fallback string
}

// Respond returns the reply for prompt. It never fails.
func (r Responder) Respond(prompt string) string {
	for _, rule := range r.Rules {
		if rule.Matches(prompt) {
			return rule.Reply
		}
	}
	return r.Fallback
}

// Topic returns the name of the matching rule, or "general".
func (r Responder) Topic(prompt string) string {
	for _, rule := range r.Rules {
		if rule.Matches(prompt) {
			return rule.Name
		}
	}
	return "general"
}

// DefaultResponder is the built-in keyword table.
var DefaultResponder = Responder{
	Rules: []Rule{
		{
			Name:     "summary",
			Keywords: []string{"summary", "overview"},
			Reply: "Based on my analysis of your dataset:\n\n" +
				"**Key Summary:**\n" +
				"1. The main measure shows a consistent upward trend across the period covered.\n" +
				"2. The strongest growth happens in the early part of the series.\n" +
				"3. Secondary measures rise roughly in proportion to the main one.\n" +
				"4. Margins between the measures stay relatively stable throughout.",
		},
		{
			Name:     "trend",
			Keywords: []string{"trend", "pattern"},
			Reply: "I've analyzed the trends in your data:\n\n" +
				"**Trend Analysis:**\n" +
				"- The main measure shows a strong positive trend overall\n" +
				"- There is a short dip midway through, after which the upward trend resumes\n" +
				"- Related measures follow a similar pattern, suggesting they are correlated\n" +
				"- Growth appears to be stabilizing in the most recent periods",
		},
		{
			Name:     "recommendations",
			Keywords: []string{"recommend", "suggest"},
			Reply: "Based on the data analysis, here are my recommendations:\n\n" +
				"**Strategic Recommendations:**\n" +
				"1. **Continue Growth Investment**: The consistent growth suggests the current strategy is effective\n" +
				"2. **Cost Optimization**: Look for periods where costs grow faster than output\n" +
				"3. **Investigate Dips**: Find the factors behind short declines to prevent them recurring\n" +
				"4. **Forecasting**: Prepare for a possible plateau with more detailed forecasting\n" +
				"5. **Diversification**: Consider new segments to keep growth momentum",
		},
		{
			Name:     "forecast",
			Keywords: []string{"forecast", "predict", "future"},
			Reply: "Here's my forecast based on the current data trends:\n\n" +
				"**Forecast:**\n" +
				"- If current growth continues, the main measure keeps rising over the next periods\n" +
				"- Growth is showing signs of deceleration, which points to a potential plateau\n" +
				"- Related measures will likely keep tracking the main measure\n" +
				"- Seasonal factors may cause above or below average periods\n\n" +
				"This forecast assumes no major disruptions or significant changes to operations.",
		},
		{
			Name:     "comparison",
			Keywords: []string{"compare", "difference"},
			Reply: "Comparing performance across different periods:\n\n" +
				"**Comparative Analysis:**\n" +
				"- **First half vs second half**: The later periods show higher average values\n" +
				"- **Period-over-period**: Most periods grow, with an occasional negative step\n" +
				"- **Measure vs measure**: The measures grow at similar but not identical rates\n" +
				"- **Ratios**: The ratio between measures remains relatively stable",
		},
	},
	Fallback: "I've analyzed your dataset and found several interesting insights:\n\n" +
		"1. The main measure shows consistent growth across the series\n" +
		"2. Related measures track closely with it, keeping a consistent ratio\n" +
		"3. A few periods stand out with stronger performance than the rest\n" +
		"4. There may be a cyclical pattern worth a closer look\n\n" +
		"Would you like me to explore any specific aspect of this data in more detail?",
}

// Respond answers prompt with DefaultResponder.
func Respond(prompt string) string {
	return DefaultResponder.Respond(prompt)
}
