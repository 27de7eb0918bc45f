package dto

// ProductFilters narrows the product list. Empty fields match everything.
type ProductFilters struct {
	CategoryID string `json:"categoryId"`
	TypeID     string `json:"typeId"`
	PhoneID    string `json:"phoneId"`
	Color      string `json:"color"`
}

// CascadeResult describes what a cascading delete removed.
type CascadeResult struct {
	Collection      string   `json:"collection"`
	ID              string   `json:"id"`
	RemovedPhones   []string `json:"removedPhones"`
	RemovedProducts []string `json:"removedProducts"`
	// CascadeErrors lists dependent rows the store refused to delete. They are
	// still pruned from the snapshot.
	CascadeErrors []string `json:"cascadeErrors,omitempty"`
	// Stale is set when re-reading the owning collection failed; the
	// snapshot keeps its old rows for that collection until the next load.
	Stale bool `json:"stale"`
}
