package enum

type feast int

const (
	theophany feast = iota
	easter
	pentecost
	feastCount
)

var feasts = MustCatalog([]Entry[feast]{
	{theophany, "Theophany"},
	{easter, "Easter"},
	{pentecost, "Pentecost"},
}, WithCardinality(int(feastCount)), WithTypeName("Feast"))

func (feast) EnumCatalog() *Catalog[feast] { return feasts }

type city string

var cities = MustCatalog([]Entry[city]{
	{"APW", "Apia"},
	{"PPG", "Pago Pago"},
	{"FAL", "Fale_Ola"},
	{"NUK", "Nuku alofa"},
}, WithTypeName("City"))

func (city) EnumCatalog() *Catalog[city] { return cities }

type trio uint8

const (
	x0 trio = iota
	x1
	x2
)

var trios = MustCatalog([]Entry[trio]{
	{x0, "X0"},
	{x1, "X1"},
	{x2, "X2"},
})

func (trio) EnumCatalog() *Catalog[trio] { return trios }

// undeclared has no catalog binding.
type undeclared int
