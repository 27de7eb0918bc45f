package model

// Category groups products, e.g. "Case" or "Screen Protector".
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RowIndex int    `json:"_rowIndex,omitempty"`
}

// ProductType is the top of the reference hierarchy; phones and products
// both point at one.
type ProductType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RowIndex int    `json:"_rowIndex,omitempty"`
}

type Phone struct {
	ID       string `json:"id"`
	TypeID   string `json:"typeId"`
	Name     string `json:"name"`
	RowIndex int    `json:"_rowIndex,omitempty"`
}
