package model

// Catalog is an in-memory snapshot of the four collections.
type Catalog struct {
	Categories []Category    `json:"categories"`
	Types      []ProductType `json:"types"`
	Phones     []Phone       `json:"phones"`
	Products   []Product     `json:"products"`
}

func (c *Catalog) FindCategory(id string) (*Category, bool) {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

func (c *Catalog) FindType(id string) (*ProductType, bool) {
	for i := range c.Types {
		if c.Types[i].ID == id {
			return &c.Types[i], true
		}
	}
	return nil, false
}

func (c *Catalog) FindPhone(id string) (*Phone, bool) {
	for i := range c.Phones {
		if c.Phones[i].ID == id {
			return &c.Phones[i], true
		}
	}
	return nil, false
}

func (c *Catalog) FindProduct(id string) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// CategoryName resolves a product's category for display, "Unknown" when
// the reference dangles.
func (c *Catalog) CategoryName(id string) string {
	if cat, ok := c.FindCategory(id); ok {
		return cat.Name
	}
	return UnknownName
}

func (c *Catalog) TypeName(id string) string {
	if t, ok := c.FindType(id); ok {
		return t.Name
	}
	return UnknownName
}

func (c *Catalog) PhoneName(id string) string {
	if p, ok := c.FindPhone(id); ok {
		return p.Name
	}
	return UnknownName
}

const UnknownName = "Unknown"
