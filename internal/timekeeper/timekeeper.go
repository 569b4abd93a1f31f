package timekeeper

import "time"

// Clock supplies the current time. The chat logs never call time.Now
// directly so tests can pin rotation and separator behavior to a date.
type Clock interface {
	Now() time.Time
}

type zonedClock struct {
	loc *time.Location
}

// NewZoned returns a clock reporting wall time in the given zone.
func NewZoned(loc *time.Location) Clock {
	return &zonedClock{loc: loc}
}

func (c *zonedClock) Now() time.Time {
	return time.Now().In(c.loc)
}
