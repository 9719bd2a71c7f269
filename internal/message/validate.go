package message

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLineTooLong matches every LineTooLongError via errors.Is
var ErrLineTooLong = errors.New("commit message line too long")

// LineTooLongError reports the first line over the limit. Line is 1-based.
type LineTooLongError struct {
	Line   int
	Length int
	Max    int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line %d is %d characters long (max %d)", e.Line, e.Length, e.Max)
}

// Is reports whether target is ErrLineTooLong
func (e *LineTooLongError) Is(target error) bool {
	return target == ErrLineTooLong
}

// Validate checks that every line of message is at most max runes.
// A max of zero or less selects DefaultWidth.
func Validate(message string, max int) error {
	if max <= 0 {
		max = DefaultWidth
	}
	for i, line := range strings.Split(message, "\n") {
		if n := runeLen(line); n > max {
			return &LineTooLongError{Line: i + 1, Length: n, Max: max}
		}
	}
	return nil
}

// Finalize wraps message and validates the result. Trailing whitespace is
// removed first. A word longer than width survives wrapping and is reported
// as a LineTooLongError together with the wrapped text.
func Finalize(message string, width int) (string, error) {
	wrapped := Wrap(strings.TrimRight(message, " \t\r\n"), width)
	if err := Validate(wrapped, width); err != nil {
		return wrapped, err
	}
	return wrapped, nil
}
