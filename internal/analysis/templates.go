package analysis

// Template is a canned prompt offered to the user.
type Template struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

var builtinTemplates = []Template{
	{ID: "1", Name: "Data Summary", Prompt: "Provide a summary of the key insights from this dataset."},
	{ID: "2", Name: "Correlation Analysis", Prompt: "Identify correlations between variables in this dataset."},
	{ID: "3", Name: "Trend Detection", Prompt: "Detect and explain any trends visible in this dataset."},
	{ID: "4", Name: "Anomaly Detection", Prompt: "Identify any anomalies or outliers in this dataset."},
	{ID: "5", Name: "Recommendations", Prompt: "Based on this data, what recommendations would you make?"},
	{ID: "6", Name: "Forecast Future Trends", Prompt: "Based on this data, can you forecast potential future trends?"},
	{ID: "7", Name: "Segment Analysis", Prompt: "Can you identify any natural segments or clusters in this data?"},
	{ID: "8", Name: "Comparative Analysis", Prompt: "Compare the performance across different time periods in this dataset."},
}

// Templates returns a copy of the built-in prompt templates.
func Templates() []Template {
	out := make([]Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// TemplateByID looks up a built-in template.
func TemplateByID(id string) (Template, bool) {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
