package currency

import (
	"fmt"
	"math"
	"strings"
)

// Format renders a display price such as "USD 1,234.56".
func Format(code string, amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	rounded := math.Round(amount*100) / 100
	whole := math.Floor(rounded)
	cents := int(math.Round((rounded - whole) * 100))

	intStr := fmt.Sprintf("%.0f", whole)
	formatted := addThousandsSeparator(intStr, ",")
	if cents > 0 {
		formatted = fmt.Sprintf("%s.%02d", formatted, cents)
	}

	result := strings.ToUpper(code) + " " + formatted
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
