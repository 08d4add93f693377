// Package report renders validation reports for people: display helpers used
// by the web dashboard, and Markdown, HTML and PDF documents.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joelkehle/justplanit/internal/validation"
)

// FormatCurrency abbreviates amount as $1.2M, $350K or $900. Halves round
// up, as the dashboard does.
func FormatCurrency(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", math.Round(amount/100_000)/10)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", math.Round(amount/1_000))
	default:
		return "$" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
}

func VerdictColor(v validation.Verdict) string {
	switch v {
	case validation.VerdictStrongGo:
		return "bg-green-500 text-white"
	case validation.VerdictGo:
		return "bg-green-400 text-white"
	case validation.VerdictConditional:
		return "bg-yellow-500 text-black"
	case validation.VerdictNoGo:
		return "bg-red-500 text-white"
	default:
		return "bg-gray-500 text-white"
	}
}

func RiskColor(l validation.Level) string {
	switch l {
	case validation.LevelLow:
		return "text-green-500"
	case validation.LevelMedium:
		return "text-yellow-500"
	case validation.LevelHigh:
		return "text-red-500"
	default:
		return "text-gray-500"
	}
}

// VerdictLabel turns STRONG_GO into "STRONG GO".
func VerdictLabel(v validation.Verdict) string {
	return strings.Replace(string(v), "_", " ", 1)
}

// Percent renders a 0-100 score.
func Percent(n validation.Number) string {
	return strconv.FormatFloat(n.Float(), 'f', -1, 64) + "%"
}

// OutOfTen renders a 0-10 score.
func OutOfTen(n validation.Number) string {
	return strconv.FormatFloat(n.Float(), 'f', -1, 64) + "/10"
}
