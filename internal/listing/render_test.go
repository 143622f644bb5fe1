package listing

import (
	"strings"
	"testing"
)

func TestRenderFixedOrderAndOmissions(t *testing.T) {
	l := Listing{
		Emoji: "🙂",
		Name:  "Gadget",
		Prices: map[string]PriceInfo{
			"UK":  {Amount: "£80", Shipping: "N/A"},
			"USA": {Amount: "$99", Shipping: "$10"},
		},
	}
	md := Render(l)

	usa := strings.Index(md, "🇺🇸 USA")
	uk := strings.Index(md, "🇬🇧 UK")
	if usa < 0 || uk < 0 || usa > uk {
		t.Fatalf("expected USA before UK:\n%s", md)
	}
	if strings.Contains(md, "DE:") || strings.Contains(md, "AU:") {
		t.Fatalf("countries without prices must be omitted:\n%s", md)
	}
	if strings.Contains(md, "Métricas") {
		t.Fatalf("metrics section must be omitted without orders/rrp:\n%s", md)
	}
	if !strings.Contains(md, "- Tránsito: ?") {
		t.Fatalf("expected ? transit placeholder:\n%s", md)
	}
	if !strings.Contains(md, "- Peso bruto: ? kg") {
		t.Fatalf("expected default weight:\n%s", md)
	}
}

func TestRenderProfitMarginPositional(t *testing.T) {
	l := Listing{
		Emoji: "🙂",
		Name:  "Gadget",
		Prices: map[string]PriceInfo{
			"USA": {Amount: "50", Shipping: "N/A"},
			"UK":  {Amount: "40", Shipping: "N/A"},
		},
		Profits: []string{"12.5", "9"},
		Margins: []string{"45", "40"},
	}
	md := Render(l)
	if !strings.Contains(md, "- 🇺🇸 USA: **$50** (💸 $12.5 • 45%)") {
		t.Fatalf("USA annotation mismatch:\n%s", md)
	}
	if !strings.Contains(md, "- 🇬🇧 UK: **$40** (💸 $9 • 40%)") {
		t.Fatalf("UK annotation mismatch:\n%s", md)
	}
}

func TestRenderProfitWithoutMargin(t *testing.T) {
	l := Listing{
		Emoji:   "🙂",
		Name:    "Gadget",
		Prices:  map[string]PriceInfo{"USA": {Amount: "$50"}},
		Profits: []string{"12"},
	}
	md := Render(l)
	if !strings.Contains(md, "(💸 $12)") {
		t.Fatalf("expected closed profit annotation:\n%s", md)
	}
}

func TestRenderMetrics(t *testing.T) {
	l := Listing{
		Emoji:  "🙂",
		Name:   "Gadget",
		Orders: "2100+",
		RRP:    "$59.99",
	}
	md := Render(l)
	if !strings.Contains(md, "📊 **Métricas**") {
		t.Fatalf("expected metrics section:\n%s", md)
	}
	if !strings.Contains(md, "- Unidades vendidas este año: **2,100+**") {
		t.Fatalf("orders line mismatch:\n%s", md)
	}
	if !strings.Contains(md, "- PVP recomendado: **$59.99**") {
		t.Fatalf("rrp line mismatch:\n%s", md)
	}
}

func TestFormatEndToEnd(t *testing.T) {
	raw := "🔥 Daily Dropshipper 2024/06/30\nGoshippro Price: $50 to USA, $40 to UK\nGross Weight: 1.2kg\nTo USA: 10-15 days\nKeyword: gadget"
	want := strings.Join([]string{
		"🔥 **Daily Dropshipper 2024/06/30**",
		"*2024-06-30*",
		"",
		"💰 **Precio (producto + envío)**",
		"- 🇺🇸 USA: **$50**",
		"- 🇬🇧 UK: **$40**",
		"",
		"📦 **Logística**",
		"- Peso bruto: 1.2kg",
		"- Tránsito: USA 10-15 days",
		"",
		"",
		"🔑 Keyword 1688: `gadget`",
	}, "\n")
	if got := Format(raw); got != want {
		t.Fatalf("end-to-end mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatEmptyInput(t *testing.T) {
	if got := Format("  \n \n "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestFormatIdempotentOnOwnOutput(t *testing.T) {
	raw := "🔥 Daily Dropshipper\nGoshippro Price: $50 to USA\nKeyword: gadget"
	once := Format(raw)
	twice := Format(once)
	if twice == "" {
		t.Fatalf("re-formatting rendered output must not produce empty text")
	}
}
