package report

import (
	"github.com/Rhymond/go-money"
)

// won groups thousands the way KRW prices are quoted, without a symbol.
var won = money.NewFormatter(0, ".", ",", "", "1")

// FormatWon renders a whole-won amount as "73,000". Negative values keep their sign.
func FormatWon(v int64) string {
	return won.Format(v)
}
