package coinpool

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// Method is the lot-matching policy a pool applies when inserting new lots.
type Method string

const (
	FIFO Method = "FIFO"
	LIFO Method = "LIFO"
)

// Methods lists the supported accounting methods.
var Methods = []Method{FIFO, LIFO}

// ParseMethod converts a case-insensitive method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate returns apperrors.ErrInvalidPoolMethod for anything but FIFO or LIFO.
func (m Method) Validate() error {
	switch m {
	case FIFO, LIFO:
		return nil
	}
	return fmt.Errorf("%w: %q", apperrors.ErrInvalidPoolMethod, string(m))
}

func (m Method) String() string {
	return string(m)
}
