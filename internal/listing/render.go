package listing

import (
	"fmt"
	"strings"
)

const templateMD = "%s **%s**\n%s\n\n💰 **Precio (producto + envío)**\n%s\n\n📦 **Logística**\n- Peso bruto: %s\n- Tránsito: %s\n\n%s\n🔑 Keyword 1688: `%s`"

// transitSummary lists the markets shown on the Tránsito line. EU shipping
// entries appear here even though EU never gets a price line.
var transitSummary = []string{"USA", "EU", "AU"}

// Render substitutes the listing into the fixed Markdown template. Sections
// whose source data is absent are omitted; the output is a single string.
func Render(l Listing) string {
	priceLines := make([]string, 0, len(CountryOrder))
	for idx, c := range CountryOrder {
		info, ok := l.Prices[c.Code]
		if !ok {
			continue
		}
		amount := info.Amount
		if !strings.HasPrefix(amount, "$") && !strings.HasPrefix(amount, "€") && !strings.HasPrefix(amount, "£") {
			amount = "$" + amount
		}
		extra := ""
		if len(l.Profits) > 0 && idx < len(l.Profits) {
			extra = fmt.Sprintf(" (💸 $%s", l.Profits[idx])
			if len(l.Margins) > 0 && idx < len(l.Margins) {
				extra += fmt.Sprintf(" • %s%%)", l.Margins[idx])
			} else {
				extra += ")"
			}
		}
		priceLines = append(priceLines, fmt.Sprintf("- %s %s: **%s**%s", c.Flag, c.Code, amount, extra))
	}

	shipParts := make([]string, 0, len(transitSummary))
	for _, code := range transitSummary {
		if days, ok := l.Shipping[code]; ok {
			shipParts = append(shipParts, code+" "+days)
		}
	}
	shipTimes := "?"
	if len(shipParts) > 0 {
		shipTimes = strings.Join(shipParts, " · ")
	}

	metricLines := []string{}
	if l.Orders != "" {
		metricLines = append(metricLines, fmt.Sprintf("- Unidades vendidas este año: **%s**", FormatThousands(l.Orders)))
	}
	if l.RRP != "" {
		metricLines = append(metricLines, fmt.Sprintf("- PVP recomendado: **%s**", l.RRP))
	}
	metrics := ""
	if len(metricLines) > 0 {
		metrics = "📊 **Métricas**\n" + strings.Join(metricLines, "\n") + "\n\n"
	}

	weight := l.Weight
	if weight == "" {
		weight = "? kg"
	}

	return fmt.Sprintf(templateMD,
		l.Emoji,
		l.Name,
		l.DateLine,
		strings.Join(priceLines, "\n"),
		weight,
		shipTimes,
		metrics,
		l.Keyword,
	)
}

// Format is the single-block entry point: parse then render. A blank block
// yields an empty string rather than an empty template.
func Format(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return Render(Parse(raw))
}
