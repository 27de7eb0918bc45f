package dto

type CreateCategoryInput struct {
	Name string
}

type CreateTypeInput struct {
	Name string
}

type CreatePhoneInput struct {
	Name   string
	TypeID string
}

type CreateProductInput struct {
	Name       string
	CategoryID string
	TypeID     string
	PhoneID    string
	Color      string
	Stock      *int // nil means missing
	Image      string
}
