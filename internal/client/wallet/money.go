package wallet

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a user-entered rupee amount ("5000", "5,000.50") into
// minor units without going through floating point.
func ParseAmount(input string) (int64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}

	whole := raw
	frac := ""
	if i := strings.Index(raw, "."); i >= 0 {
		whole, frac = raw[:i], raw[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount has more than two decimal places")
	}
	for len(frac) < 2 {
		frac += "0"
	}

	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || rupees < 0 {
		return 0, fmt.Errorf("please enter a valid amount")
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("please enter a valid amount")
	}

	return rupees*100 + cents, nil
}

// FormatAmount renders minor units as "LKR 5,000.00".
func FormatAmount(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	rupees := cents / 100
	rem := cents % 100

	digits := strconv.FormatInt(rupees, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := fmt.Sprintf("LKR %s.%02d", strings.Join(groups, ","), rem)
	if negative {
		return "-" + out
	}
	return out
}
