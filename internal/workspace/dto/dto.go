package dto

import (
	cartdto "github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	catalogdto "github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/view"
)

// WorkspaceView is everything a client needs to render the session.
type WorkspaceView struct {
	Loaded    bool   `json:"loaded"`
	LoadError string `json:"loadError,omitempty"`
	Stale     bool   `json:"stale"`

	Categories []model.Category    `json:"categories"`
	Types      []model.ProductType `json:"types"`
	Phones     []model.Phone       `json:"phones"`
	Products   []model.Product     `json:"products"`
	Colors     []string            `json:"colors"`

	// FilterPhones and FormPhones are the phone choices under the selected
	// filter type and form type.
	FilterPhones []model.Phone `json:"filterPhones"`
	FormPhones   []model.Phone `json:"formPhones"`

	Filters catalogdto.ProductFilters `json:"filters"`
	Form    view.ProductForm          `json:"form"`
	Cart    []cartdto.DetailedLine    `json:"cart"`
	Total   int                       `json:"totalProducts"`
}

// FilterPatch sets the filters that are present. Type is applied before
// phone, so both can be set in one request.
type FilterPatch struct {
	CategoryID *string `json:"categoryId"`
	TypeID     *string `json:"typeId"`
	PhoneID    *string `json:"phoneId"`
	Color      *string `json:"color"`
}

// FormPatch maps form field names to new values.
type FormPatch map[view.FormField]string

type AddNameInput struct {
	Name string `json:"name"`
}

type AddPhoneInput struct {
	Name   string `json:"name"`
	TypeID string `json:"typeId"`
}

type CartItemInput struct {
	ProductID string `json:"productId"`
}

type CartQuantityInput struct {
	Quantity *int `json:"quantity"`
}
