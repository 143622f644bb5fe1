package listing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Country holds one entry of the fixed display order.
type Country struct {
	Code string
	Flag string
}

// CountryOrder is the canonical rendering sequence. Input order never
// changes it.
var CountryOrder = []Country{
	{"USA", "🇺🇸"},
	{"UK", "🇬🇧"},
	{"DE", "🇩🇪"},
	{"AU", "🇦🇺"},
}

// CodeAlias normalizes country codes received in raw text.
var CodeAlias = map[string]string{"US": "USA", "GB": "UK"}

// PriceInfo is the per-country price tuple extracted from the body.
type PriceInfo struct {
	Amount   string
	Shipping string
}

// Listing is the transient value parsed out of one raw text block. It is
// built fresh per block and discarded after rendering.
type Listing struct {
	Emoji    string
	Name     string
	DateLine string
	Prices   map[string]PriceInfo
	Shipping map[string]string
	Profits  []string
	Margins  []string
	Weight   string
	Orders   string
	RRP      string
	Keyword  string
}

var (
	keyTokenRe     = regexp.MustCompile(`(Goshippro Price|Gross Weight|Profit|Units Sold|Orders|To USA|Keyword)`)
	tendenciaRe    = regexp.MustCompile(`(?i)Tendencia.*`)
	leadingJunkRe  = regexp.MustCompile(`^[^A-Za-z0-9]+`)
	dateRe         = regexp.MustCompile(`(\d{4}[/-]\d{2}[/-]\d{2})`)
	keywordRe      = regexp.MustCompile(`(?i)Keyword[^:]*:\s*(.+)`)
	keywordCutRe   = regexp.MustCompile(`(?is)Keyword.*`)
	fragmentRe     = regexp.MustCompile(`[\n,;]+`)
	countryFirstRe = regexp.MustCompile(`\b([A-Za-z]{2,3})\b[^$€£\d]*([$€£]?\d+(?:\.\d+)?)`)
	amountFirstRe  = regexp.MustCompile(`(?i)([$€£]?\d+(?:\.\d+)?)[^A-Za-z0-9]*to[^A-Za-z0-9]*([A-Za-z]{2,3})`)
	shippingCostRe = regexp.MustCompile(`(?i)shipping\s*([$€£]\d+(?:\.\d+)?)`)
	transitRe      = regexp.MustCompile(`To ([A-Z]{2,3}): ([0-9-]+ days)`)
	profitRe       = regexp.MustCompile(`\$?([0-9.]+)`)
	marginRe       = regexp.MustCompile(`([0-9.]+)%`)
	thousandsRe    = regexp.MustCompile(`^([0-9 ]+)(\+?)`)
)

const headerEmojis = "🔔🔥🙂"

// Parse extracts all known fields from one raw block. It never fails:
// fields whose patterns do not match are left at their documented defaults.
func Parse(raw string) Listing {
	if strings.TrimSpace(raw) == "" {
		return Listing{}
	}
	text := cleanText(raw)

	header := text
	body := ""
	if i := strings.Index(text, "\n"); i >= 0 {
		header = text[:i]
		body = text[i+1:]
	}

	l := Listing{
		Emoji:    headerEmoji(header),
		Name:     headerName(header),
		DateLine: headerDate(header),
	}

	if m := keywordRe.FindStringSubmatch(body); m != nil {
		l.Keyword = strings.TrimSpace(m[1])
	}
	// The keyword tail is excised before any other field extraction so a
	// keyword like "usb gadget 40" can never be misread as price data.
	body = keywordCutRe.ReplaceAllString(body, "")

	l.Prices = ParsePrices(body)
	l.Shipping = ParseShipping(body)
	l.Weight = parseWeight(body)
	l.Orders = parseOrders(body)
	l.RRP = parseRRP(body)
	// Profit and margin stay positional: index i pairs with the i-th entry
	// of CountryOrder, assuming the source lists them in that order.
	l.Profits = ParseProfits(labeledLine(body, "Profit Per Unit"))
	l.Margins = ParseMargins(labeledLine(body, "Profit Margin"))
	return l
}

// cleanText forces line breaks before the known field labels so one-line
// inputs still split into parseable lines, and drops trend annotations.
func cleanText(raw string) string {
	raw = keyTokenRe.ReplaceAllString(raw, "\n$1")
	raw = tendenciaRe.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}

func headerEmoji(header string) string {
	if r, size := utf8.DecodeRuneInString(header); size > 0 && strings.ContainsRune(headerEmojis, r) {
		return string(r)
	}
	return InferEmoji(header)
}

// InferEmoji picks the header symbol by substring containment,
// first match wins: Daily before Dropshipper.
func InferEmoji(header string) string {
	if strings.Contains(header, "Daily") {
		return "🔔"
	}
	if strings.Contains(header, "Dropshipper") || strings.Contains(header, "Dropshippers") {
		return "🔥"
	}
	return "🙂"
}

func headerName(header string) string {
	name := strings.TrimSpace(leadingJunkRe.ReplaceAllString(header, ""))
	name = strings.TrimRight(name, ", ")
	if name == "" {
		name = "Product"
	}
	return name
}

func headerDate(header string) string {
	m := dateRe.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return "*" + strings.ReplaceAll(m[1], "/", "-") + "*"
}

// ParsePrices extracts per-country price tuples. The body is split on
// newlines, commas and semicolons, each part again on "/", and every
// fragment is tried against two alternative patterns: country-then-amount,
// then amount-"to"-country. The first match per fragment wins and later
// fragments overwrite earlier ones for the same code.
func ParsePrices(body string) map[string]PriceInfo {
	out := map[string]PriceInfo{}
	for _, part := range fragmentRe.Split(body, -1) {
		for _, sub := range strings.Split(part, "/") {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				continue
			}
			var code, amount string
			if m := countryFirstRe.FindStringSubmatch(sub); m != nil {
				code, amount = strings.ToUpper(m[1]), m[2]
			} else if m := amountFirstRe.FindStringSubmatch(sub); m != nil {
				amount, code = m[1], strings.ToUpper(m[2])
			} else {
				continue
			}
			if alias, ok := CodeAlias[code]; ok {
				code = alias
			}
			ship := "N/A"
			if m := shippingCostRe.FindStringSubmatch(sub); m != nil {
				ship = m[1]
			}
			out[code] = PriceInfo{Amount: amount, Shipping: ship}
		}
	}
	return out
}

// ParseShipping reads transit times from the line starting with "To USA".
// Shipping data on any other line is ignored.
func ParseShipping(body string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "To USA") {
			continue
		}
		for _, m := range transitRe.FindAllStringSubmatch(line, -1) {
			out[m[1]] = m[2]
		}
		break
	}
	return out
}

// ParseProfits returns all profit amounts found in text, in appearance order.
func ParseProfits(text string) []string {
	return findAll(profitRe, text)
}

// ParseMargins returns all percentage figures found in text, in appearance order.
func ParseMargins(text string) []string {
	return findAll(marginRe, text)
}

func findAll(re *regexp.Regexp, text string) []string {
	ms := re.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return nil
	}
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m[1])
	}
	return out
}

func labeledLine(body, label string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return line
		}
	}
	return ""
}

func parseWeight(body string) string {
	line := labeledLine(body, "Gross Weight")
	if _, val, ok := strings.Cut(line, ":"); ok {
		if w := strings.TrimRight(strings.TrimSpace(val), ","); w != "" {
			return w
		}
	}
	return "? kg"
}

var ordersLineRe = regexp.MustCompile(`(?i)(Orders[^\n]*|Units Sold[^\n]*)`)

func parseOrders(body string) string {
	m := ordersLineRe.FindString(body)
	if m == "" {
		return ""
	}
	_, val, ok := strings.Cut(m, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(val)
}

var rrpLineRe = regexp.MustCompile(`(?i)Recommended Retail Price[^\n]*`)

func parseRRP(body string) string {
	m := rrpLineRe.FindString(body)
	if m == "" {
		return ""
	}
	_, val, ok := strings.Cut(m, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(val)
}

// FormatThousands converts "2100" into "2,100", keeping a trailing "+"
// marker. Input that does not start with digits is returned unchanged.
func FormatThousands(num string) string {
	m := thousandsRe.FindStringSubmatch(strings.ReplaceAll(num, ",", ""))
	if m == nil {
		return num
	}
	digits := strings.ReplaceAll(m[1], " ", "")
	if digits == "" {
		return num
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + m[2]
}

// RemovePriceSections drops every fragment that carries a price for one of
// the given country codes and joins what remains with single spaces.
func RemovePriceSections(body string, codes []string) string {
	parts := []string{}
	for _, piece := range fragmentRe.Split(body, -1) {
		p := strings.TrimSpace(piece)
		if p == "" {
			continue
		}
		skip := false
		for _, code := range codes {
			q := regexp.QuoteMeta(code)
			if regexp.MustCompile(fmt.Sprintf(`\b%s\b[^$€£\d]*[$€£]?\d`, q)).MatchString(p) {
				skip = true
				break
			}
			if regexp.MustCompile(fmt.Sprintf(`(?i)[$€£]?\d+(?:\.\d+)?\s*to\s*%s\b`, q)).MatchString(p) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
