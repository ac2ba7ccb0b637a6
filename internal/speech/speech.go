// Package speech renders query results as natural-language sentences, with
// the audio cues and slightly brusque phrasing the skill is known for.
package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pawtrack/catflap/internal/cats"
)

// Purr audio cues, distinct for indoors and outdoors. The rendering layer
// plays these when the speech goes out as SSML.
const (
	InsidePurr  = "<audio src='soundbank://soundlibrary/animals/amzn_sfx_cat_purr_01'/>"
	OutsidePurr = "<audio src='soundbank://soundlibrary/animals/amzn_sfx_cat_purr_02'/>"
)

// Apology lines. Any remote failure becomes Badness; an unrecognized cat
// gets the politer line.
const (
	Badness      = "Aw. Badness."
	UnknownCat   = "Sorry, I don't recognise that cat."
	UnknownPlace = "Sorry, I don't know where you mean."
	NoCatsFound  = "I can't find any cats."
)

// JoinNames joins names for speech: "A", "A and B", "A, B and C". Empty
// input renders empty; callers pick their own empty-set phrase.
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// Since renders a human-rounded elapsed duration, coarsest unit only:
// "3 days", "1 month".
func Since(since, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(since, now, "", ""))
}

// ForCat says where a cat is and for how long. The canonical states get the
// contracted form ("has been outside"); named rooms get "in the". With purr
// enabled an audio cue is prefixed for the two canonical states.
func ForCat(cat cats.LocatedCat, now time.Time, purr bool) string {
	inThe := " has been in the "
	if cat.Location == "outside" || cat.Location == "inside" {
		inThe = " has been "
	}

	prefix := ""
	if purr && cat.Location == "outside" {
		prefix = OutsidePurr + " "
	}
	if purr && cat.Location == "inside" {
		prefix = InsidePurr + " "
	}

	return prefix + cat.Name + inThe + cat.Location + " for " + Since(cat.Since, now) + "."
}

// AtLocation lists which cats are at a location: "Tom and Jerry are in the
// house." An empty set gets the stock no-kitties phrase. isInside decides
// whether the label takes "in the".
func AtLocation(names []string, label string, isInside func(string) bool) string {
	var sb strings.Builder
	switch len(names) {
	case 0:
		sb.WriteString("No kitties are ")
	case 1:
		sb.WriteString(names[0])
		sb.WriteString(" is ")
	default:
		sb.WriteString(JoinNames(names))
		sb.WriteString(" are ")
	}

	if isInside != nil && isInside(label) && label != "inside" {
		sb.WriteString("in the ")
	}
	sb.WriteString(label)
	sb.WriteString(".")
	return sb.String()
}

// GroupedInOut partitions the cats into indoors and outdoors and renders one
// sentence per non-empty bucket. Both buckets empty gets the stock not-found
// sentence.
func GroupedInOut(set []cats.LocatedCat, isInside func(string) bool) string {
	var in, out []string
	for _, c := range set {
		if isInside(c.Location) {
			in = append(in, c.Name)
		} else {
			out = append(out, c.Name)
		}
	}
	if len(in) == 0 && len(out) == 0 {
		return NoCatsFound
	}

	var parts []string
	if len(in) > 0 {
		parts = append(parts, bucket(in, "inside"))
	}
	if len(out) > 0 {
		parts = append(parts, bucket(out, "outside"))
	}
	return strings.Join(parts, " ")
}

func bucket(names []string, state string) string {
	verb := " are "
	if len(names) == 1 {
		verb = " is "
	}
	return JoinNames(names) + verb + state + "."
}

// Age renders a cascading age sentence: "Tom is 2 years, 1 month and 3 days
// old." Exact anniversaries get a celebration. Cats under a month old come
// out in days only, which the cascade produces naturally.
func Age(name string, a cats.Age) string {
	var parts []string
	if a.Years > 0 {
		parts = append(parts, plural(a.Years, "year"))
	}
	if a.Months > 0 {
		parts = append(parts, plural(a.Months, "month"))
	}
	if a.Days > 0 || len(parts) == 0 {
		parts = append(parts, plural(a.Days, "day"))
	}

	var joined string
	switch len(parts) {
	case 1:
		joined = parts[0]
	case 2:
		joined = parts[0] + " and " + parts[1]
	default:
		joined = strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}

	s := name + " is " + joined + " old."
	if a.Anniversary {
		s += " Happy Birthday " + name + "!"
	}
	return s
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
