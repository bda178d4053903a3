package menu

type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	PriceCents  int    `json:"priceCents"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"desc"`
	Active      bool   `json:"-"`
}

type Side struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// CartMeta is what the frontend attaches to a cart line. Pupusa lines carry
// the base catalog id plus side selections and notes; every line carries the
// market occurrence it was added for.
type CartMeta struct {
	Kind          string   `json:"kind,omitempty"`
	BaseID        string   `json:"baseId,omitempty"`
	Sides         []string `json:"sides,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	MarketID      string   `json:"marketId,omitempty"`
	MarketName    string   `json:"marketName,omitempty"`
	MarketDateISO string   `json:"marketDateISO,omitempty"`
}

type CartItem struct {
	ID   string    `json:"id"`
	Qty  int       `json:"qty"`
	Meta *CartMeta `json:"meta,omitempty"`
}

type Tip struct {
	Type  string  `json:"type"` // none | percent | custom
	Value float64 `json:"value"`
}

type PricedLine struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UnitCents int    `json:"unit_cents"`
	Qty       int    `json:"qty"`
	LineCents int    `json:"line_cents"`
}

type Priced struct {
	SubtotalCents int          `json:"subtotalCents"`
	TipCents      int          `json:"tipCents"`
	TotalCents    int          `json:"amountCents"`
	Lines         []PricedLine `json:"lines"`
}

// CartError is a client-caused validation failure; handlers map it to 400.
type CartError struct{ Reason string }

func (e *CartError) Error() string { return e.Reason }
