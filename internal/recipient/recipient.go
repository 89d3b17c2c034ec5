// Package recipient parses and validates comma-delimited recipient lists.
package recipient

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyInput is returned when the recipient string is blank.
var ErrEmptyInput = errors.New("please enter at least one email address")

// MalformedAddressError reports the first candidate that is not an address.
type MalformedAddressError struct {
	Address string
}

func (e *MalformedAddressError) Error() string {
	return fmt.Sprintf("invalid email format: %s", e.Address)
}

// local-part@domain.tld, none of the pieces may hold whitespace or '@'.
var addressRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate splits raw on commas, trims every token and checks each one left to
// right. It stops at the first malformed token. Order, case and duplicates are
// preserved in the returned list.
func Validate(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	parts := strings.Split(raw, ",")
	addrs := make([]string, 0, len(parts))

	for _, part := range parts {
		addr := strings.TrimSpace(part)
		if !addressRe.MatchString(addr) {
			return nil, &MalformedAddressError{Address: addr}
		}
		addrs = append(addrs, addr)
	}

	return addrs, nil
}
