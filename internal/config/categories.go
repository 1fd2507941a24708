package config

// CategoryWeights orders command categories in the help listing.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"🎲 Gameplay":     20,
	"🔞 Restricted":   40,
	"🛠️ Maintenance": 60,
}

// CategoryWeight returns the sort weight of a category. Unknown categories sort last.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 1000
}
