package period

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var titleCaser = cases.Title(language.BrazilianPortuguese)

// Label renders r for display in pt-BR.
func Label(r Range) string {
	n := Normalize(r)
	switch n.Type {
	case TypeDay:
		return dayLabel(n.StartDate)
	case TypeWeek:
		return spanLabel(n.StartDate, n.EndDate)
	case TypeMonth:
		return fmt.Sprintf("%s de %d", titleCaser.String(monthName(n.StartDate.Month())), n.StartDate.Year())
	default:
		if n.StartDate.Equal(n.EndDate) {
			return dayLabel(n.StartDate)
		}
		return fmt.Sprintf("%s a %s", n.StartDate.Format("02/01/2006"), n.EndDate.Format("02/01/2006"))
	}
}

func dayLabel(d time.Time) string {
	weekday := weekdayNames[d.Weekday()]
	// Only the first letter is raised; Title would also capitalize "-feira".
	weekday = titleCaser.String(weekday[:1]) + weekday[1:]
	return fmt.Sprintf("%s, %d de %s de %d", weekday, d.Day(), monthName(d.Month()), d.Year())
}

func spanLabel(start, end time.Time) string {
	if start.Year() == end.Year() {
		return fmt.Sprintf("%s a %s", start.Format("02/01"), end.Format("02/01/2006"))
	}
	return fmt.Sprintf("%s a %s", start.Format("02/01/2006"), end.Format("02/01/2006"))
}

func monthName(m time.Month) string {
	return monthNames[m-1]
}
