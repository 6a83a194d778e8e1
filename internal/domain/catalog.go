package domain

// Product is one sellable offer from the static catalog. The catalog is not
// persisted; it is defined once at process start and prices are captured onto
// orders at purchase time.
type Product struct {
	Code     string  `json:"code"`
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// CategoryAmazon is the only catalog category currently sold.
const CategoryAmazon = "AMAZON"

// Stock type codes. Each product code doubles as the stock type it is
// fulfilled from.
const (
	TypeAmazonDigital = "AMZ_DIG"
	TypeAmazonMix     = "AMZ_MIX"
	TypeAmazonPrime   = "AMZ_PRIME"
	TypeAmazonTenPlus = "AMZ_10P"
)

// Catalog lists every product on sale, in display order.
var Catalog = []Product{
	{Code: TypeAmazonDigital, Label: "DIGITAIS / ASSINATURAS", Category: CategoryAmazon, Price: 45.00},
	{Code: TypeAmazonMix, Label: "MIX PEDIDOS FISICOS", Category: CategoryAmazon, Price: 110.00},
	{Code: TypeAmazonPrime, Label: "PRIME ATIVO + PEDIDOS FISICOS", Category: CategoryAmazon, Price: 125.00},
	{Code: TypeAmazonTenPlus, Label: "+10 PEDIDOS FISICOS", Category: CategoryAmazon, Price: 155.00},
}

// StockTypes returns the known stock type codes, in catalog order. Used by
// availability summaries and admin listings.
func StockTypes() []string {
	out := make([]string, 0, len(Catalog))
	for _, p := range Catalog {
		out = append(out, p.Code)
	}
	return out
}

// ProductByCode resolves a catalog product by its code. The second return
// value reports whether the code is known.
func ProductByCode(code string) (Product, bool) {
	for _, p := range Catalog {
		if p.Code == code {
			return p, true
		}
	}
	return Product{}, false
}
