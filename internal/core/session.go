package core

// DefaultStandardDay is the regular workday length beyond which time counts as overtime.
const DefaultStandardDay Minutes = 8 * 60

// Warning is a non-fatal remark attached to a computed day.
type Warning string

const WarningMissingClockOut Warning = "missing clock-out"

// Calculator turns a day's punches into a DayRecord.
type Calculator struct {
	StandardDay Minutes
}

// NewCalculator returns a Calculator; a non-positive standard day falls back to DefaultStandardDay.
func NewCalculator(standardDay Minutes) Calculator {
	if standardDay <= 0 {
		standardDay = DefaultStandardDay
	}
	return Calculator{StandardDay: standardDay}
}

// Calculate pairs punches 1-2, 3-4, ... and sums the intervals.
//
// A pair whose clock-out precedes its clock-in fails with *OrderingError and
// no record is produced. An odd trailing punch adds nothing to the total and
// is reported as WarningMissingClockOut.
func (c Calculator) Calculate(date Date, punches []Punch) (DayRecord, Warning, error) {
	if err := date.Validate(); err != nil {
		return DayRecord{}, "", err
	}
	standard := c.StandardDay
	if standard <= 0 {
		standard = DefaultStandardDay
	}

	var worked Minutes
	for i := 0; i+1 < len(punches); i += 2 {
		in, out := punches[i].Time, punches[i+1].Time
		d := out.Minutes() - in.Minutes()
		if d < 0 {
			return DayRecord{}, "", &OrderingError{Pair: i/2 + 1, In: in, Out: out}
		}
		worked += d
	}

	var warning Warning
	if len(punches)%2 == 1 {
		warning = WarningMissingClockOut
	}

	rec := DayRecord{
		Date:     date,
		Punches:  append([]Punch(nil), punches...),
		Worked:   worked,
		Overtime: (worked - standard).Max(0),
		Type:     date.Type(),
	}
	return rec, warning, nil
}
