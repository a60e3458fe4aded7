package models

import "math"

// Значки автора по количеству завершённых задач
const (
	BadgeBronze   = "Bronze"
	BadgeSilver   = "Silver"
	BadgeGold     = "Gold"
	BadgePlatinum = "Platinum"
)

// Пороговые значения значков (нижняя граница диапазона).
const (
	silverThreshold   = 20
	goldThreshold     = 50
	platinumThreshold = 100
)

// BadgeProgress описывает продвижение автора к следующему значку.
type BadgeProgress struct {
	Current  string  `json:"current"`
	Next     string  `json:"next"`
	Progress float64 `json:"progress"`
	Needed   int     `json:"needed"`
}

// BadgeForCompletedTasks возвращает значок по количеству завершённых задач.
// Чистая функция от счётчика: <20 Bronze, 20-49 Silver, 50-99 Gold, >=100 Platinum.
func BadgeForCompletedTasks(count int) string {
	switch {
	case count >= platinumThreshold:
		return BadgePlatinum
	case count >= goldThreshold:
		return BadgeGold
	case count >= silverThreshold:
		return BadgeSilver
	default:
		return BadgeBronze
	}
}

// ProgressToNextBadge возвращает текущий значок, следующий значок, долю
// пройденного диапазона и число задач до следующего значка.
// Для диапазона [lo, hi): progress = (count-lo)/(hi-lo), needed = hi-count.
func ProgressToNextBadge(count int) BadgeProgress {
	switch {
	case count >= platinumThreshold:
		return BadgeProgress{Current: BadgePlatinum, Next: BadgePlatinum, Progress: 1.0, Needed: 0}
	case count >= goldThreshold:
		return BadgeProgress{
			Current:  BadgeGold,
			Next:     BadgePlatinum,
			Progress: progressInBand(count, goldThreshold, platinumThreshold),
			Needed:   platinumThreshold - count,
		}
	case count >= silverThreshold:
		return BadgeProgress{
			Current:  BadgeSilver,
			Next:     BadgeGold,
			Progress: progressInBand(count, silverThreshold, goldThreshold),
			Needed:   goldThreshold - count,
		}
	default:
		return BadgeProgress{
			Current:  BadgeBronze,
			Next:     BadgeSilver,
			Progress: progressInBand(count, 0, silverThreshold),
			Needed:   silverThreshold - count,
		}
	}
}

func progressInBand(count, lo, hi int) float64 {
	return float64(count-lo) / float64(hi-lo)
}

// RoundRating округляет средний рейтинг до одного знака после запятой.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
