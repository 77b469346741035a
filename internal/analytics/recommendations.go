package analytics

// Recommendation is one item of the static portfolio guidance text.
type Recommendation struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var recommendations = []Recommendation{
	{
		Title: "Agriculture Risk Mitigation",
		Body:  "67.5% default rate in smallholder farming: recommend climate-smart insurance, input financing bundles, and enhanced monitoring.",
	},
	{
		Title: "Alternative Data Excellence",
		Body:  "Mobile transactions and income variability are the strongest predictors: expand Ascent-like AI scoring for better inclusion without risk.",
	},
	{
		Title: "Proactive Portfolio Management",
		Body:  "Identify and engage high-volatility performing loans early to prevent migration to NPLs.",
	},
	{
		Title: "Strategic Diversification",
		Body:  "Increase exposure to Digital/Tech and Trade sectors (4-6% defaults) to balance inclusion goals with portfolio health.",
	},
	{
		Title: "Real-Time Deployment Ready",
		Body:  "High-AUC predictive model suitable for integration into Efoyta, Michu, and Ansar platforms.",
	},
}

// Recommendations returns a copy of the static recommendation text.
func Recommendations() []Recommendation {
	out := make([]Recommendation, len(recommendations))
	copy(out, recommendations)
	return out
}
