// Package export renders catalog listings as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/tealeg/xlsx"
)

const (
	SheetName   = "Products"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var productHeader = []string{"ID", "Name", "Category", "Type", "Phone", "Color", "Stock", "Image"}

// Products writes one row per product with its references resolved by name
// against snap.
func Products(w io.Writer, snap *model.Catalog, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeader {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(snap.CategoryName(p.CategoryID))
		row.AddCell().SetString(snap.TypeName(p.TypeID))
		row.AddCell().SetString(snap.PhoneName(p.PhoneID))
		row.AddCell().SetString(p.Color)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(p.Image)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
