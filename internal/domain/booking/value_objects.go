package booking

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidDateFormat = errors.New("date must match DD-MM-YYYY")
	ErrInvalidTimeFormat = errors.New("time must match H:MM AM|PM")
	ErrPastAppointment   = errors.New("appointment must be in the future")
	ErrEmptyReason       = errors.New("rejection reason cannot be empty")
)

const (
	dateLayout = "02-01-2006"
	timeLayout = "3:04 PM"
)

var (
	datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	timePattern = regexp.MustCompile(`^(0?[1-9]|1[0-2]):[0-5]\d (AM|PM)$`)
)

// AppointmentTime is the requested instant, built from a calendar date
// and a 12-hour display time, both interpreted in the platform's fixed
// regional offset. The original display string is preserved because it
// is what patients and hospitals see.
type AppointmentTime struct {
	at          time.Time
	displaySlot string
}

// NewAppointmentTime parses and combines the date and time strings in
// the given civil zone. It does not check pastness; ValidateFuture does.
func NewAppointmentTime(dateStr, timeStr string, zone *time.Location) (AppointmentTime, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if !datePattern.MatchString(dateStr) {
		return AppointmentTime{}, ErrInvalidDateFormat
	}
	if !timePattern.MatchString(timeStr) {
		return AppointmentTime{}, ErrInvalidTimeFormat
	}

	d, err := time.ParseInLocation(dateLayout, dateStr, zone)
	if err != nil {
		return AppointmentTime{}, ErrInvalidDateFormat
	}
	t, err := time.ParseInLocation(timeLayout, timeStr, zone)
	if err != nil {
		return AppointmentTime{}, ErrInvalidTimeFormat
	}

	at := time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, zone)
	return AppointmentTime{at: at, displaySlot: timeStr}, nil
}

// ReconstructAppointmentTime rehydrates a persisted appointment. The
// stored instant is converted back into the regional zone so weekday
// and calendar-day derivations stay stable.
func ReconstructAppointmentTime(at time.Time, displaySlot string, zone *time.Location) AppointmentTime {
	return AppointmentTime{at: at.In(zone), displaySlot: displaySlot}
}

func (a AppointmentTime) At() time.Time {
	return a.at
}

func (a AppointmentTime) DisplaySlot() string {
	return a.displaySlot
}

// CivilDate is the appointment's calendar date in the regional zone,
// truncated to midnight. Token sequencing and capacity counting key on it.
func (a AppointmentTime) CivilDate() time.Time {
	return time.Date(a.at.Year(), a.at.Month(), a.at.Day(), 0, 0, 0, 0, a.at.Location())
}

// ValidateFuture rejects instants that are not strictly after now,
// with both sides compared in the regional zone.
func (a AppointmentTime) ValidateFuture(now time.Time) error {
	if !a.at.After(now) {
		return ErrPastAppointment
	}
	return nil
}

// ParseCivilDate parses a DD-MM-YYYY calendar date as midnight in the
// regional zone. Read paths that take a bare date share this with the
// appointment parser.
func ParseCivilDate(dateStr string, zone *time.Location) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if !datePattern.MatchString(dateStr) {
		return time.Time{}, ErrInvalidDateFormat
	}
	d, err := time.ParseInLocation(dateLayout, dateStr, zone)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return d, nil
}

// FormatCivilDate renders a civil date in the platform's display format.
func FormatCivilDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatSlot renders a slot start given as minutes from midnight in the
// 12-hour display format, hour unpadded ("9:30 AM").
func FormatSlot(startMin int) string {
	t := time.Date(2000, 1, 1, startMin/60, startMin%60, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

type RejectionReason struct {
	value string
}

func NewRejectionReason(s string) (RejectionReason, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RejectionReason{}, ErrEmptyReason
	}
	return RejectionReason{value: s}, nil
}

// ReconstructRejectionReason rehydrates a persisted reason.
func ReconstructRejectionReason(s string) RejectionReason {
	return RejectionReason{value: s}
}

func (r RejectionReason) String() string {
	return r.value
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: strings.TrimSpace(value)}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
