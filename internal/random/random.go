package random

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	mrand "math/rand/v2"
	"strconv"
	"strings"

	apperrors "blazehammer/internal/errors"
)

const (
	lettersDigits = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upper         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower         = "abcdefghijklmnopqrstuvwxyz"
	digits        = "0123456789"
	symbols       = "!@#$%^&*()-_=+[]{}<>?/"
)

const (
	// MaxLength bounds every generated length.
	MaxLength = 1 << 16

	// MaxPrecision bounds the decimals of Float.
	MaxPrecision = 64
)

// NoCharsetDiagnostic is returned by Password when every character class is disabled.
const NoCharsetDiagnostic = "[Invalid password settings: no character sets enabled]"

// ErrStartTooLong is returned by Number when the fixed prefix does not fit.
var ErrStartTooLong = apperrors.ErrStartTooLong

// secureIntn returns a uniform int in [0, n) from crypto/rand.
func secureIntn(n int) int {
	if n <= 1 {
		return 0
	}

	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS source is gone
		return mrand.IntN(n)
	}

	return int(v.Int64())
}

// CheckLength rejects lengths above MaxLength.
func CheckLength(length int) error {
	if length > MaxLength {
		return fmt.Errorf("%w: length %d exceeds the maximum of %d", apperrors.ErrInvalidArgument, length, MaxLength)
	}

	return nil
}

func secureString(charset string, length int) string {
	if length <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		b.WriteByte(charset[secureIntn(len(charset))])
	}

	return b.String()
}

// Email returns prefix + random alphanumerics + "@" + one of domains.
func Email(prefix string, length int, domains []string) (string, error) {
	if err := CheckLength(length); err != nil {
		return "", err
	}

	domain := "gmail.com"
	if len(domains) > 0 {
		domain = domains[secureIntn(len(domains))]
	}

	return prefix + secureString(lettersDigits, length) + "@" + domain, nil
}

// Number returns exactly length digits starting with start.
func Number(start string, length int) (string, error) {
	if err := CheckLength(length); err != nil {
		return "", err
	}

	if len(start) > length {
		return "", fmt.Errorf("%w: start %q has length %d, which exceeds the maximum allowed length of %d",
			ErrStartTooLong, start, len(start), length)
	}

	return start + secureString(digits, length-len(start)), nil
}

// String returns a random alphanumeric string.
func String(length int) (string, error) {
	if err := CheckLength(length); err != nil {
		return "", err
	}

	return secureString(lettersDigits, length), nil
}

// Int returns a uniform int in [min, max]. Any range of int is accepted, including
// the full one.
func Int(min, max int) (int, error) {
	if min > max {
		return 0, fmt.Errorf("%w: min %d is greater than max %d", apperrors.ErrInvalidArgument, min, max)
	}

	span := uint64(max) - uint64(min)
	if span == math.MaxUint64 {
		return int(mrand.Uint64()), nil
	}

	return min + int(mrand.Uint64N(span+1)), nil
}

// Float returns a uniform real in [min, max] formatted to precision decimals.
func Float(min, max float64, precision int) (string, error) {
	if precision > MaxPrecision {
		return "", fmt.Errorf("%w: precision %d exceeds the maximum of %d", apperrors.ErrInvalidArgument, precision, MaxPrecision)
	}

	if max < min {
		min, max = max, min
	}
	if precision < 0 {
		precision = 0
	}

	v := min + mrand.Float64()*(max-min)

	return strconv.FormatFloat(v, 'f', precision, 64), nil
}

// Password draws length characters from the union of the enabled classes. With no
// class enabled the result is NoCharsetDiagnostic.
func Password(length int, withUpper, withLower, withDigits, withSymbols bool) (string, error) {
	if err := CheckLength(length); err != nil {
		return "", err
	}

	var charset strings.Builder

	if withUpper {
		charset.WriteString(upper)
	}
	if withLower {
		charset.WriteString(lower)
	}
	if withDigits {
		charset.WriteString(digits)
	}
	if withSymbols {
		charset.WriteString(symbols)
	}

	if charset.Len() == 0 {
		return NoCharsetDiagnostic, nil
	}

	return secureString(charset.String(), length), nil
}

// Bool returns "true" or "false".
func Bool() string {
	return strconv.FormatBool(mrand.IntN(2) == 1)
}

// IP returns a dotted quad with random octets.
func IP() string {
	return fmt.Sprintf("%d.%d.%d.%d", mrand.IntN(256), mrand.IntN(256), mrand.IntN(256), mrand.IntN(256))
}

// Choice returns one element of choices, or "" when empty.
func Choice(choices []string) string {
	if len(choices) == 0 {
		return ""
	}

	return choices[mrand.IntN(len(choices))]
}
