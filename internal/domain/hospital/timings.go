package hospital

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimingWindow  = errors.New("close time must be after open time")
	ErrUnevenSlotDivision   = errors.New("slot duration must evenly divide the operating window")
	ErrInvalidSlotDuration  = errors.New("slot duration not in allowed set")
	ErrOutsideOperatingTime = errors.New("time outside operating hours")
)

// Slot durations offered in hospital configuration, in minutes.
var allowedSlotDurations = map[int]struct{}{
	10: {},
	15: {},
	20: {},
	30: {},
	60: {},
}

func IsAllowedSlotDuration(minutes int) bool {
	_, ok := allowedSlotDurations[minutes]
	return ok
}

// DayTiming is one weekday's operating window. Open and Close are
// minutes from midnight in the region's civil zone.
type DayTiming struct {
	Weekday  time.Weekday
	OpenMin  int
	CloseMin int
	Open     bool
}

func (d DayTiming) validate(slotDurationMin int) error {
	if !d.Open {
		return nil
	}
	if d.CloseMin <= d.OpenMin || d.OpenMin < 0 || d.CloseMin > 24*60 {
		return ErrInvalidTimingWindow
	}
	if (d.CloseMin-d.OpenMin)%slotDurationMin != 0 {
		return ErrUnevenSlotDivision
	}
	return nil
}

// WeeklyTimings holds one entry per weekday, indexed by time.Weekday.
type WeeklyTimings [7]DayTiming

func NewWeeklyTimings(days []DayTiming, slotDurationMin int) (WeeklyTimings, error) {
	if !IsAllowedSlotDuration(slotDurationMin) {
		return WeeklyTimings{}, ErrInvalidSlotDuration
	}
	var wt WeeklyTimings
	for i := range wt {
		wt[i] = DayTiming{Weekday: time.Weekday(i)}
	}
	for _, d := range days {
		if err := d.validate(slotDurationMin); err != nil {
			return WeeklyTimings{}, err
		}
		wt[d.Weekday] = d
	}
	return wt, nil
}

func (wt WeeklyTimings) ForWeekday(w time.Weekday) DayTiming {
	return wt[w]
}

// TotalDailySlots is the day's slot inventory: the operating window
// divided into slot-duration buckets. A closed day has no inventory.
func (wt WeeklyTimings) TotalDailySlots(w time.Weekday, slotDurationMin int) int {
	d := wt[w]
	if !d.Open || slotDurationMin <= 0 {
		return 0
	}
	return (d.CloseMin - d.OpenMin) / slotDurationMin
}

// SlotBucket is a fixed-duration admission window within operating hours.
type SlotBucket struct {
	Start time.Time
	End   time.Time
}

// BucketFor rounds an appointment instant down to its slot start. The
// instant is interpreted in its own location, which callers must have
// set to the regional civil zone.
func (wt WeeklyTimings) BucketFor(at time.Time, slotDurationMin int) (SlotBucket, error) {
	d := wt[at.Weekday()]
	if !d.Open {
		return SlotBucket{}, ErrOutsideOperatingTime
	}
	minuteOfDay := at.Hour()*60 + at.Minute()
	if minuteOfDay < d.OpenMin || minuteOfDay >= d.CloseMin {
		return SlotBucket{}, ErrOutsideOperatingTime
	}
	offset := ((minuteOfDay - d.OpenMin) / slotDurationMin) * slotDurationMin
	startMin := d.OpenMin + offset

	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	start := dayStart.Add(time.Duration(startMin) * time.Minute)
	return SlotBucket{
		Start: start,
		End:   start.Add(time.Duration(slotDurationMin) * time.Minute),
	}, nil
}
