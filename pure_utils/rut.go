package pure_utils

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrInvalidRut = errors.New("invalid rut")

// NormalizeRut returns the rut as "12345678-K": no dots, upper case check digit.
// It does not validate the check digit, see ValidateRut for that.
func NormalizeRut(rut string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(rut))
	cleaned = strings.NewReplacer(".", "", " ", "", "-", "").Replace(cleaned)
	if len(cleaned) < 2 {
		return "", errors.Wrapf(ErrInvalidRut, "rut %q is too short", rut)
	}
	body, dv := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	if _, err := strconv.Atoi(body); err != nil {
		return "", errors.Wrapf(ErrInvalidRut, "rut %q has a non numeric body", rut)
	}
	body = strings.TrimLeft(body, "0")
	if body == "" {
		return "", errors.Wrapf(ErrInvalidRut, "rut %q is zero", rut)
	}
	return body + "-" + dv, nil
}

func rutCheckDigit(body string) string {
	sum, multiplier := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * multiplier
		multiplier++
		if multiplier > 7 {
			multiplier = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(dv)
	}
}

// ValidateRut normalizes the rut and checks its modulo 11 check digit.
func ValidateRut(rut string) (string, error) {
	normalized, err := NormalizeRut(rut)
	if err != nil {
		return "", err
	}
	body, dv, _ := strings.Cut(normalized, "-")
	if rutCheckDigit(body) != dv {
		return "", errors.Wrapf(ErrInvalidRut, "rut %q has a wrong check digit", rut)
	}
	return normalized, nil
}
