package ratings

import (
	"math"

	"cinelog/proj/internal/domain/models"
)

// Average computes the mean rating over a review collection, rounded
// to one decimal place. An empty collection averages to 0.
func Average(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10
}
