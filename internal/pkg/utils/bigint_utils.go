package utils

import (
	"math/big"
	"strings"
)

// EtherDecimals is the number of decimals of a native EVM balance.
const EtherDecimals = 18

// FormatBigInt converts a base-unit amount to a decimal string with the given
// number of decimals, trimming trailing zeros.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	abs := new(big.Int).Abs(amount)
	whole, frac := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	var sb strings.Builder
	if amount.Sign() < 0 {
		sb.WriteByte('-')
	}
	sb.WriteString(whole.String())

	if frac.Sign() != 0 {
		fracStr := frac.String()
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
		sb.WriteByte('.')
		sb.WriteString(strings.TrimRight(fracStr, "0"))
	}
	return sb.String()
}

// FormatEther formats a wei amount as ether.
func FormatEther(wei *big.Int) string {
	return FormatBigInt(wei, EtherDecimals)
}

// SplitAndTrim splits a comma separated list, dropping empty items.
func SplitAndTrim(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
