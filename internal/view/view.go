// Package view is the explicit state container for a session's browse
// filters and its in-progress product form. Reduce is pure; every side
// effect of a cascading delete on filters and form is a transition here.
package view

import "github.com/fekuna/omnipos-warehouse/internal/catalog/dto"

// ProductForm is the add-product draft. Stock stays a string until
// submission so a half-typed value survives between requests.
type ProductForm struct {
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
	TypeID     string `json:"typeId"`
	PhoneID    string `json:"phoneId"`
	Color      string `json:"color"`
	Stock      string `json:"stock"`
	Image      string `json:"image"`
}

type State struct {
	Filters dto.ProductFilters `json:"filters"`
	Form    ProductForm        `json:"form"`
}

type Action interface {
	apply(State) State
}

// Reduce returns the state after a. A nil action is a no-op.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// ReduceAll folds actions left to right.
func ReduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

type SetFilterCategory struct{ CategoryID string }

func (a SetFilterCategory) apply(s State) State {
	s.Filters.CategoryID = a.CategoryID
	return s
}

// SetFilterType always clears the phone filter; a phone picked under the
// old type does not belong to the new one.
type SetFilterType struct{ TypeID string }

func (a SetFilterType) apply(s State) State {
	s.Filters.TypeID = a.TypeID
	s.Filters.PhoneID = ""
	return s
}

type SetFilterPhone struct{ PhoneID string }

func (a SetFilterPhone) apply(s State) State {
	s.Filters.PhoneID = a.PhoneID
	return s
}

type SetFilterColor struct{ Color string }

func (a SetFilterColor) apply(s State) State {
	s.Filters.Color = a.Color
	return s
}

type ResetFilters struct{}

func (ResetFilters) apply(s State) State {
	s.Filters = dto.ProductFilters{}
	return s
}

type FormField string

const (
	FieldName       FormField = "name"
	FieldCategoryID FormField = "categoryId"
	FieldTypeID     FormField = "typeId"
	FieldPhoneID    FormField = "phoneId"
	FieldColor      FormField = "color"
	FieldStock      FormField = "stock"
	FieldImage      FormField = "image"
)

var FormFields = []FormField{FieldName, FieldCategoryID, FieldTypeID, FieldPhoneID, FieldColor, FieldStock, FieldImage}

func ValidFormField(f FormField) bool {
	for _, ff := range FormFields {
		if ff == f {
			return true
		}
	}
	return false
}

// SetFormField sets one form field. Changing the type clears the phone.
// Unknown fields are ignored.
type SetFormField struct {
	Field FormField
	Value string
}

func (a SetFormField) apply(s State) State {
	switch a.Field {
	case FieldName:
		s.Form.Name = a.Value
	case FieldCategoryID:
		s.Form.CategoryID = a.Value
	case FieldTypeID:
		if s.Form.TypeID != a.Value {
			s.Form.PhoneID = ""
		}
		s.Form.TypeID = a.Value
	case FieldPhoneID:
		s.Form.PhoneID = a.Value
	case FieldColor:
		s.Form.Color = a.Value
	case FieldStock:
		s.Form.Stock = a.Value
	case FieldImage:
		s.Form.Image = a.Value
	}
	return s
}

type ResetForm struct{}

func (ResetForm) apply(s State) State {
	s.Form = ProductForm{}
	return s
}

type CategoryDeleted struct{ ID string }

func (a CategoryDeleted) apply(s State) State {
	if s.Filters.CategoryID == a.ID {
		s.Filters.CategoryID = ""
	}
	if s.Form.CategoryID == a.ID {
		s.Form.CategoryID = ""
	}
	return s
}

// TypeDeleted clears the type wherever it is selected, along with the phone
// chosen under it.
type TypeDeleted struct{ ID string }

func (a TypeDeleted) apply(s State) State {
	if s.Filters.TypeID == a.ID {
		s.Filters.TypeID = ""
		s.Filters.PhoneID = ""
	}
	if s.Form.TypeID == a.ID {
		s.Form.TypeID = ""
		s.Form.PhoneID = ""
	}
	return s
}

type PhoneDeleted struct{ ID string }

func (a PhoneDeleted) apply(s State) State {
	if s.Filters.PhoneID == a.ID {
		s.Filters.PhoneID = ""
	}
	if s.Form.PhoneID == a.ID {
		s.Form.PhoneID = ""
	}
	return s
}
