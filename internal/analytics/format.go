package analytics

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencyFormatter форматирует суммы с группировкой разрядов по локали
// и ровно двумя знаками после запятой
type CurrencyFormatter struct {
	Symbol string
	Locale language.Tag
}

// DefaultFormatter - рупии с индийской группировкой разрядов
var DefaultFormatter = CurrencyFormatter{
	Symbol: "₹",
	Locale: language.MustParse("en-IN"),
}

func NewCurrencyFormatter(symbol, locale string) (CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return CurrencyFormatter{}, fmt.Errorf("invalid currency locale %q: %w", locale, err)
	}
	return CurrencyFormatter{Symbol: symbol, Locale: tag}, nil
}

// Format выводит отрицательные суммы со знаком минус перед символом валюты:
// превышение бюджета не должно выглядеть как остаток.
func (f CurrencyFormatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	// Printer не потокобезопасен, поэтому создаем на каждый вызов
	p := message.NewPrinter(f.Locale)
	return sign + f.Symbol + p.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(2)))
}

func FormatCurrency(amount decimal.Decimal) string {
	return DefaultFormatter.Format(amount)
}

// FormatDate выводит дату в виде ДД/ММ/ГГГГ
func FormatDate(d civil.Date) string {
	return fmt.Sprintf("%02d/%02d/%d", d.Day, int(d.Month), d.Year)
}
