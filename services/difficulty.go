package services

import (
	"math"
	"strings"
)

// Base gold values follow scaled triangular numbers: 100×1, 100×3, 100×6,
// 100×10, 100×15. The same shape drives the level curve below so quest
// value and level cost stay proportionate.
var difficultyGold = map[string]int64{
	"veryeasy": 100,
	"easy":     300,
	"medium":   600,
	"hard":     1000,
	"veryhard": 1500,
}

var canonicalTier = map[string]string{
	"veryeasy": "VeryEasy",
	"easy":     "Easy",
	"medium":   "Medium",
	"hard":     "Hard",
	"veryhard": "VeryHard",
}

func normalizeDifficulty(tier string) string {
	s := strings.ToLower(tier)
	for _, sep := range []string{" ", "-", "_"} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

// DifficultyGold maps a difficulty tier to its base gold value. Matching is
// case-insensitive and ignores spaces, hyphens and underscores. Unknown
// tiers fail with ErrInvalidDifficulty; callers must not default silently.
func DifficultyGold(tier string) (int64, error) {
	gold, ok := difficultyGold[normalizeDifficulty(tier)]
	if !ok {
		return 0, ErrInvalidDifficulty
	}
	return gold, nil
}

// CanonicalDifficulty returns the canonical spelling of a tier ("VeryEasy",
// "Medium", ...) for storage, or ErrInvalidDifficulty.
func CanonicalDifficulty(tier string) (string, error) {
	name, ok := canonicalTier[normalizeDifficulty(tier)]
	if !ok {
		return "", ErrInvalidDifficulty
	}
	return name, nil
}

// QuestXPReward fixes a quest's xp reward at creation: the tier's base gold
// value scaled up by 1% per owner level above the first.
func QuestXPReward(baseGold int64, ownerLevel int) int64 {
	if ownerLevel < 1 {
		ownerLevel = 1
	}
	return int64(math.Round(float64(baseGold) * (1 + float64(ownerLevel-1)/100)))
}

func triangular(n int) int64 {
	return int64(n) * int64(n+1) / 2
}

// XPToNextLevel is the xp needed to go from level to level+1:
// triangular(level) × 100, so 100, 300, 600, 1000, ...
func XPToNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return triangular(level) * 100
}
