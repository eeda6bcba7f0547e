package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	timeLayout = "15:04"

	// endOfDay конец суток, допустим только как граница интервала
	endOfDay = "24:00"
)

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени (ожидается HH:MM)
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time string overflows the day")
)

// TimeString время суток в формате HH:MM без привязки к дате
type TimeString struct {
	minutes int
	valid   bool
}

// NewTimeString создает TimeString из часов и минут переданного времени
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// NewTimeStringFromString парсит строку формата HH:MM. "24:00" означает конец суток.
func NewTimeStringFromString(s string) (TimeString, error) {
	s = strings.TrimSpace(s)
	// Postgres TIME отдает секунды: "09:00:00"
	if len(s) == len("15:04:05") {
		s = s[:5]
	}
	if s == endOfDay {
		return TimeString{minutes: 24 * 60, valid: true}, nil
	}

	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return NewTimeString(t), nil
}

// MustTimeString парсит строку и паникует при ошибке. Только для констант и тестов.
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return !t.valid
}

// IsEndOfDay возвращает true для 24:00
func (t TimeString) IsEndOfDay() bool {
	return t.valid && t.minutes == 24*60
}

// Validate проверяет, что время задано и лежит в пределах суток (24:00 не проходит: это не начало интервала)
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	if t.minutes < 0 || t.minutes >= 24*60 {
		return ErrTimeOverflow
	}
	return nil
}

// Minutes количество минут от полуночи
func (t TimeString) Minutes() int {
	return t.minutes
}

// AddMinutes сдвигает время на n минут. Переход через полночь - ошибка,
// кроме ровно 24:00, которое допустимо как конец интервала.
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	m := t.minutes + n
	if m < 0 || m > 24*60 {
		return TimeString{}, ErrTimeOverflow
	}
	return TimeString{minutes: m, valid: true}, nil
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// Equal возвращает true, если времена совпадают
func (t TimeString) Equal(other TimeString) bool {
	return t.valid == other.valid && t.minutes == other.minutes
}

// On привязывает время суток к календарной дате в ее часовом поясе.
// Время считается по часам на стене, поэтому в день перевода часов окно не сдвигается.
// 24:00 дает полночь следующего дня.
func (t TimeString) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.minutes/60, t.minutes%60, 0, 0, date.Location())
}

// String возвращает время в формате HH:MM
func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// Scan реализует sql.Scanner
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String(), nil
}

// MarshalText реализует encoding.TextMarshaler (используется в JSON)
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (t *TimeString) UnmarshalText(text []byte) error {
	parsed, err := NewTimeStringFromString(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
