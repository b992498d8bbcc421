package reminder

import "time"

// Bucket is the reminder a loan qualifies for on a given day.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketDueSoon
	BucketLate
)

func (b Bucket) String() string {
	switch b {
	case BucketDueSoon:
		return "due_soon"
	case BucketLate:
		return "late"
	default:
		return "none"
	}
}

// Classify compares calendar days in loc. A loan is due soon when it is due
// exactly two days after today and late when its due day is before yesterday.
func Classify(now, dueAt time.Time, loc *time.Location) Bucket {
	if loc == nil {
		loc = time.UTC
	}
	today := StartOfDay(now, loc)
	dueDay := StartOfDay(dueAt, loc)

	switch {
	case dueDay.Equal(today.AddDate(0, 0, 2)):
		return BucketDueSoon
	case dueDay.Before(today.AddDate(0, 0, -1)):
		return BucketLate
	default:
		return BucketNone
	}
}

// StartOfDay returns local midnight of the calendar day t falls on in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
