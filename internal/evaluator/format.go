package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// SignificantDigits is the precision results are rounded to before display.
const SignificantDigits = 15

// FormatResult rounds v to SignificantDigits and renders it the way the
// calculator displays numbers: the shortest decimal that reads back as the
// rounded value, switching to exponent form ("1e+21", "1.5e-7") only for
// very large or very small magnitudes. It reports false when v is not finite,
// including values that overflow while rounding.
func FormatResult(v float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', SignificantDigits, 64), 64)
	if err != nil || math.IsInf(rounded, 0) {
		return "", false
	}
	if rounded == 0 {
		return "0", true
	}
	return formatShortest(rounded), true
}

// formatShortest renders a finite, non-zero v with decimal notation while
// the decimal exponent n satisfies -6 <= n-1 < 21, exponent notation otherwise.
func formatShortest(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	// "d.ddddde±x" carries the shortest round-tripping digits.
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)
	k := len(digits)
	n := e + 1 // position of the decimal point relative to digits

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteByte(digits[0])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if e >= 0 {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
			e = -e
		}
		b.WriteString(strconv.Itoa(e))
	}
	return b.String()
}
