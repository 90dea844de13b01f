package contact

import "time"

const birthdayKeyLayout = "01-02"

// Week is the Monday to Sunday calendar week containing a given day.
type Week struct {
	Start time.Time // Monday 00:00 UTC
	End   time.Time // Sunday 00:00 UTC
}

// WeekOf returns the week containing day, evaluated in UTC.
func WeekOf(day time.Time) Week {
	d := day.UTC()
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday starts on Sunday.
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// Days returns the seven dates of the week in order.
func (w Week) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Keys returns the "MM-DD" keys celebrated in this week. A Feb 29 birthday is
// celebrated on Feb 28 in non-leap years.
func (w Week) Keys() []string {
	keys := make([]string, 0, 8)
	for _, d := range w.Days() {
		keys = append(keys, d.Format(birthdayKeyLayout))
		if d.Month() == time.February && d.Day() == 28 && !isLeap(d.Year()) {
			keys = append(keys, "02-29")
		}
	}
	return keys
}

// Celebrated returns the date within w on which birthday is celebrated.
func (w Week) Celebrated(birthday time.Time) (time.Time, bool) {
	for _, d := range w.Days() {
		if celebratedOn(birthday, d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// Contains reports whether birthday is celebrated within w, ignoring the year.
func (w Week) Contains(birthday time.Time) bool {
	_, ok := w.Celebrated(birthday)
	return ok
}

func celebratedOn(birthday, day time.Time) bool {
	bm, bd := birthday.Month(), birthday.Day()
	if bm == day.Month() && bd == day.Day() {
		return true
	}
	return bm == time.February && bd == 29 &&
		day.Month() == time.February && day.Day() == 28 && !isLeap(day.Year())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
