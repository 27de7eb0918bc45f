package model

// DefaultProductImage is stored when a product is created without an image.
const DefaultProductImage = "https://images.unsplash.com/photo-1512496015851-a90fb38ba796?auto=format&fit=crop&w=800&q=80"

type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
	TypeID     string `json:"typeId"`
	PhoneID    string `json:"phoneId"`
	Color      string `json:"color"`
	Stock      int    `json:"stock"`
	Image      string `json:"image"`
	// RowIndex is the product's position in the backing collection at read
	// time. It goes stale after any delete in the same collection.
	RowIndex int `json:"_rowIndex,omitempty"`
}

// CartLine is one pending order entry, unique by ProductID within a cart.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
