package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces decimales con los que se muestran los montos.
const MoneyPlaces = 2

// FormatMoney formatea un monto con dos decimales, coma como separador de miles y punto
// decimal, independiente del locale. Ej: 34200 → "34,200.00".
// El redondeo es half away from zero: 0.005 → "0.01", 0.004 → "0.00".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(MoneyPlaces)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "." + frac
}

// groupThousands inserta comas de miles en un string de dígitos.
// Ej: "25000" → "25,000", "1000000" → "1,000,000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
