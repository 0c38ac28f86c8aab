package models

const (
	baseHealthScore = 50
	maxHealthScore  = 100
)

// CalculateHealthScore scores a recipe from its dietary tags and nutrition.
// A zero saturatedFat counts as missing; a zero transFat earns the bonus.
func CalculateHealthScore(tags []string, n *Nutrition) int {
	score := baseHealthScore

	for _, tag := range tags {
		if _, ok := healthyTags[tag]; ok {
			score += 5
		}
	}

	if n != nil {
		if n.Fiber > 5 {
			score += 10
		}
		if n.Protein > 15 {
			score += 10
		}
		if n.Sodium < 600 {
			score += 5
		}
		if n.Sugar < 10 {
			score += 5
		}
		if n.SaturatedFat > 0 && n.SaturatedFat < 5 {
			score += 5
		}
		if n.TransFat == 0 {
			score += 10
		}
	}

	if score < 0 {
		return 0
	}
	if score > maxHealthScore {
		return maxHealthScore
	}
	return score
}
