package analytics

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Period - календарный месяц, за который считается статистика
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf возвращает период, которому принадлежит дата
func PeriodOf(d civil.Date) Period {
	return Period{Year: d.Year, Month: d.Month}
}

func (p Period) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December
}

// DaysInMonth учитывает високосный февраль
func (p Period) DaysInMonth() int {
	// нулевой день следующего месяца = последний день текущего
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (p Period) Start() civil.Date {
	return civil.Date{Year: p.Year, Month: p.Month, Day: 1}
}

func (p Period) End() civil.Date {
	return civil.Date{Year: p.Year, Month: p.Month, Day: p.DaysInMonth()}
}

func (p Period) Contains(d civil.Date) bool {
	return d.Year == p.Year && d.Month == p.Month && d.IsValid()
}

// DaysElapsed возвращает номер дня, достигнутого к дате asOf.
// Для прошедшего месяца это последний день, для будущего - 0.
func (p Period) DaysElapsed(asOf civil.Date) int {
	switch {
	case asOf.Before(p.Start()):
		return 0
	case asOf.After(p.End()):
		return p.DaysInMonth()
	default:
		return asOf.Day
	}
}

func (p Period) DaysRemaining(asOf civil.Date) int {
	return p.DaysInMonth() - p.DaysElapsed(asOf)
}

func (p Period) Previous() Period {
	t := time.Date(p.Year, p.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
