package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity        float64 // 时间重力
	WeightBookmark float64
	WeightComment  float64
	WeightLike     float64
	ScaleFactor    float64 // 放大系数
}

var DefaultConfig = RankConfig{
	Gravity:        1.5,
	WeightBookmark: 3.0,
	WeightComment:  2.0,
	WeightLike:     1.0,
	ScaleFactor:    100.0, // 让分数落在 0-100 区间，像"温度"
}

// CalculateScore returns the hotness of an article published at t, as seen at now.
// Views are left out: their magnitude swamps the log term.
func CalculateScore(t, now time.Time, likes, bookmarks, comments int) float64 {
	hours := now.Sub(t).Hours()
	if hours < 0 {
		hours = 0
	}

	weightedSum := float64(likes)*DefaultConfig.WeightLike +
		float64(comments)*DefaultConfig.WeightComment +
		float64(bookmarks)*DefaultConfig.WeightBookmark

	if weightedSum < 0 {
		weightedSum = 0
	}

	// log10(sum + 1) keeps sum=0 at 0
	numerator := math.Log10(weightedSum+1) * DefaultConfig.ScaleFactor

	decay := math.Pow(hours+2, DefaultConfig.Gravity)

	return numerator / decay
}
