// Package month содержит календарную арифметику сроков подписки.
package month

import (
	"time"
)

// Expiry возвращает момент окончания подписки на months месяцев начиная с from.
//
// В отличие от time.AddDate день не переносится на следующий месяц:
// 31 января + 1 месяц = 29 февраля (в високосный год), а не 2 марта.
func Expiry(from time.Time, months int) time.Time {
	if months <= 0 {
		return from
	}
	y, m, d := from.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, from.Location())
	if last := lastDay(target); d > last {
		d = last
	}
	hh, mm, ss := from.Clock()
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, from.Nanosecond(), from.Location())
}

// DayBounds возвращает полуинтервал [начало дня, начало следующего дня) для t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// DaysLeft возвращает количество целых суток до expiry, не меньше нуля.
func DaysLeft(now, expiry time.Time) int {
	if !expiry.After(now) {
		return 0
	}
	return int(expiry.Sub(now) / (24 * time.Hour))
}

func lastDay(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
