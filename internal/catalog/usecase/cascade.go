package usecase

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"go.uber.org/zap"
)

// DeleteCategory removes the category and every product in it.
func (uc *catalogUseCase) DeleteCategory(ctx context.Context, snap *model.Catalog, id string) (*dto.CascadeResult, error) {
	if _, ok := snap.FindCategory(id); !ok {
		return nil, apperr.NotFound("CategoryNotFound", "category not found")
	}
	if err := uc.repo.Delete(ctx, rowstore.Categories, id); err != nil {
		uc.logger.Error("failed to delete category", zap.String("id", id), zap.Error(err))
		return nil, storeErr(err)
	}

	res := newResult(rowstore.Categories, id)
	orphan := func(p model.Product) bool { return p.CategoryID == id }
	res.RemovedProducts = productIDs(snap.Products, orphan)
	uc.deleteDependents(ctx, rowstore.Products, res.RemovedProducts, res)

	uc.refresh(ctx, snap, res, rowstore.Categories, len(res.RemovedProducts) > 0)
	snap.Categories = removeCategory(snap.Categories, id)
	snap.Products = pruneProducts(snap.Products, orphan)
	return res, nil
}

// DeleteType removes the type, its phones, and every product of that type
// or on one of those phones.
func (uc *catalogUseCase) DeleteType(ctx context.Context, snap *model.Catalog, id string) (*dto.CascadeResult, error) {
	if _, ok := snap.FindType(id); !ok {
		return nil, apperr.NotFound("TypeNotFound", "type not found")
	}
	if err := uc.repo.Delete(ctx, rowstore.Types, id); err != nil {
		uc.logger.Error("failed to delete type", zap.String("id", id), zap.Error(err))
		return nil, storeErr(err)
	}

	res := newResult(rowstore.Types, id)
	phoneSet := make(map[string]struct{})
	for _, ph := range snap.Phones {
		if ph.TypeID == id {
			phoneSet[ph.ID] = struct{}{}
			res.RemovedPhones = append(res.RemovedPhones, ph.ID)
		}
	}
	orphanPhone := func(ph model.Phone) bool { return ph.TypeID == id }
	orphan := func(p model.Product) bool {
		_, onPhone := phoneSet[p.PhoneID]
		return p.TypeID == id || onPhone
	}
	res.RemovedProducts = productIDs(snap.Products, orphan)

	// products first so a failed phone delete never strands a product
	uc.deleteDependents(ctx, rowstore.Products, res.RemovedProducts, res)
	uc.deleteDependents(ctx, rowstore.Phones, res.RemovedPhones, res)

	uc.refresh(ctx, snap, res, rowstore.Types, len(res.RemovedProducts) > 0)
	if len(res.RemovedPhones) > 0 {
		uc.refresh(ctx, snap, res, rowstore.Phones, false)
	}
	snap.Types = removeType(snap.Types, id)
	snap.Phones = prunePhones(snap.Phones, orphanPhone)
	snap.Products = pruneProducts(snap.Products, orphan)
	return res, nil
}

// DeletePhone removes the phone and every product made for it.
func (uc *catalogUseCase) DeletePhone(ctx context.Context, snap *model.Catalog, id string) (*dto.CascadeResult, error) {
	if _, ok := snap.FindPhone(id); !ok {
		return nil, apperr.NotFound("PhoneNotFound", "phone not found")
	}
	if err := uc.repo.Delete(ctx, rowstore.Phones, id); err != nil {
		uc.logger.Error("failed to delete phone", zap.String("id", id), zap.Error(err))
		return nil, storeErr(err)
	}

	res := newResult(rowstore.Phones, id)
	orphan := func(p model.Product) bool { return p.PhoneID == id }
	res.RemovedProducts = productIDs(snap.Products, orphan)
	uc.deleteDependents(ctx, rowstore.Products, res.RemovedProducts, res)

	uc.refresh(ctx, snap, res, rowstore.Phones, len(res.RemovedProducts) > 0)
	snap.Phones = removePhone(snap.Phones, id)
	snap.Products = pruneProducts(snap.Products, orphan)
	return res, nil
}

// deleteDependents removes rows one at a time; every delete resolves its
// own position because the previous one shifted the collection.
func (uc *catalogUseCase) deleteDependents(ctx context.Context, c rowstore.Collection, ids []string, res *dto.CascadeResult) {
	for _, depID := range ids {
		if err := uc.repo.Delete(ctx, c, depID); err != nil {
			uc.logger.Warn("cascade delete failed",
				zap.String("collection", string(c)),
				zap.String("id", depID),
				zap.Error(err),
			)
			res.CascadeErrors = append(res.CascadeErrors, depID)
		}
	}
}

// refresh re-reads the owning collection (and products when dependents were
// deleted) into snap. A failed read marks the result stale and leaves the
// old rows for the caller to prune.
func (uc *catalogUseCase) refresh(ctx context.Context, snap *model.Catalog, res *dto.CascadeResult, owner rowstore.Collection, products bool) {
	var err error
	switch owner {
	case rowstore.Categories:
		var rows []model.Category
		if rows, err = uc.repo.ListCategories(ctx); err == nil {
			snap.Categories = rows
		}
	case rowstore.Types:
		var rows []model.ProductType
		if rows, err = uc.repo.ListTypes(ctx); err == nil {
			snap.Types = rows
		}
	case rowstore.Phones:
		var rows []model.Phone
		if rows, err = uc.repo.ListPhones(ctx); err == nil {
			snap.Phones = rows
		}
	}
	if err != nil {
		uc.logger.Warn("failed to refresh collection after delete", zap.String("collection", string(owner)), zap.Error(err))
		res.Stale = true
	}

	if !products {
		return
	}
	rows, err := uc.repo.ListProducts(ctx)
	if err != nil {
		uc.logger.Warn("failed to refresh products after delete", zap.Error(err))
		res.Stale = true
		return
	}
	snap.Products = rows
}

func newResult(c rowstore.Collection, id string) *dto.CascadeResult {
	return &dto.CascadeResult{
		Collection:      string(c),
		ID:              id,
		RemovedPhones:   []string{},
		RemovedProducts: []string{},
	}
}

func productIDs(products []model.Product, match func(model.Product) bool) []string {
	out := []string{}
	for _, p := range products {
		if match(p) {
			out = append(out, p.ID)
		}
	}
	return out
}

func pruneProducts(products []model.Product, match func(model.Product) bool) []model.Product {
	out := products[:0:0]
	for _, p := range products {
		if !match(p) {
			out = append(out, p)
		}
	}
	return out
}

func prunePhones(phones []model.Phone, match func(model.Phone) bool) []model.Phone {
	out := phones[:0:0]
	for _, ph := range phones {
		if !match(ph) {
			out = append(out, ph)
		}
	}
	return out
}

func removeCategory(cats []model.Category, id string) []model.Category {
	out := cats[:0:0]
	for _, c := range cats {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func removeType(types []model.ProductType, id string) []model.ProductType {
	out := types[:0:0]
	for _, t := range types {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func removePhone(phones []model.Phone, id string) []model.Phone {
	out := phones[:0:0]
	for _, ph := range phones {
		if ph.ID != id {
			out = append(out, ph)
		}
	}
	return out
}
