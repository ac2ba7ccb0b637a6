package cats

import "time"

// Age is a calendar-aware elapsed age: whole years, then whole months beyond
// those, then days beyond those. Anniversary is set when the remainder after
// the coarsest populated unit is exactly zero, i.e. today is a birthday (or a
// month-birthday for cats under a year).
type Age struct {
	Years       int
	Months      int
	Days        int
	Anniversary bool
}

// AgeAt computes the age between a birth date and now by cascading
// subtraction rather than fixed-length division, so month lengths and leap
// years come out right.
func AgeAt(dob, now time.Time) Age {
	var a Age

	cursor := dob
	for !cursor.AddDate(1, 0, 0).After(now) {
		cursor = cursor.AddDate(1, 0, 0)
		a.Years++
	}
	for !cursor.AddDate(0, 1, 0).After(now) {
		cursor = cursor.AddDate(0, 1, 0)
		a.Months++
	}
	for !cursor.AddDate(0, 0, 1).After(now) {
		cursor = cursor.AddDate(0, 0, 1)
		a.Days++
	}

	if a.Years > 0 && a.Months == 0 && a.Days == 0 {
		a.Anniversary = true
	}
	if a.Years == 0 && a.Months > 0 && a.Days == 0 {
		a.Anniversary = true
	}
	return a
}
