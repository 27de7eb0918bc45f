package usecase

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/cart"
	cartdto "github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/catalog"
	catalogdto "github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/export"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/view"
	"github.com/fekuna/omnipos-warehouse/internal/workspace"
	"github.com/fekuna/omnipos-warehouse/internal/workspace/dto"
	"go.uber.org/zap"
)

type workspaceUseCase struct {
	repo    workspace.Repository
	catalog catalog.UseCase
	engine  cart.Engine
	logger  logger.ZapLogger
}

func NewWorkspaceUseCase(repo workspace.Repository, catalogUC catalog.UseCase, engine cart.Engine, log logger.ZapLogger) workspace.UseCase {
	return &workspaceUseCase{
		repo:    repo,
		catalog: catalogUC,
		engine:  engine,
		logger:  log,
	}
}

// Load replaces the snapshot with a fresh read of every collection. A
// failed load empties the snapshot and blocks the workflow until the next
// successful load.
func (uc *workspaceUseCase) Load(ctx context.Context, sessionID string) (*dto.WorkspaceView, error) {
	var loadErr error
	s, err := uc.mutate(ctx, sessionID, false, func(ctx context.Context, s *workspace.State) error {
		snap, err := uc.catalog.LoadAll(ctx)
		if err != nil {
			loadErr = err
			s.Catalog = model.Catalog{}
			s.Loaded = false
			s.LoadError = err.Error()
			return nil
		}
		s.Catalog = *snap
		s.Loaded = true
		s.LoadError = ""
		s.Stale = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		uc.logger.Warn("workspace load failed", zap.String("session_id", sessionID), zap.Error(loadErr))
		return nil, loadErr
	}
	return render(s), nil
}

func (uc *workspaceUseCase) View(ctx context.Context, sessionID string) (*dto.WorkspaceView, error) {
	s, err := uc.read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return render(s), nil
}

func (uc *workspaceUseCase) SetFilters(ctx context.Context, sessionID string, patch *dto.FilterPatch) (*dto.WorkspaceView, error) {
	var actions []view.Action
	if patch.CategoryID != nil {
		actions = append(actions, view.SetFilterCategory{CategoryID: *patch.CategoryID})
	}
	if patch.TypeID != nil {
		actions = append(actions, view.SetFilterType{TypeID: *patch.TypeID})
	}
	if patch.PhoneID != nil {
		actions = append(actions, view.SetFilterPhone{PhoneID: *patch.PhoneID})
	}
	if patch.Color != nil {
		actions = append(actions, view.SetFilterColor{Color: *patch.Color})
	}
	return uc.dispatch(ctx, sessionID, actions...)
}

func (uc *workspaceUseCase) ResetFilters(ctx context.Context, sessionID string) (*dto.WorkspaceView, error) {
	return uc.dispatch(ctx, sessionID, view.ResetFilters{})
}

func (uc *workspaceUseCase) UpdateForm(ctx context.Context, sessionID string, patch dto.FormPatch) (*dto.WorkspaceView, error) {
	for field := range patch {
		if !view.ValidFormField(field) {
			return nil, apperr.Validation("UnknownFormField", "unknown form field "+string(field)).
				WithData(map[string]interface{}{"Field": string(field)})
		}
	}

	actions := make([]view.Action, 0, len(patch))
	for _, field := range view.FormFields {
		if v, ok := patch[field]; ok {
			actions = append(actions, view.SetFormField{Field: field, Value: v})
		}
	}
	return uc.dispatch(ctx, sessionID, actions...)
}

func (uc *workspaceUseCase) SubmitProductForm(ctx context.Context, sessionID string) (*model.Product, error) {
	var created *model.Product
	_, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		input, err := productInput(&s.Catalog, s.View.Form)
		if err != nil {
			return err
		}
		p, err := uc.catalog.CreateProduct(ctx, input)
		if err != nil {
			return err
		}
		s.Catalog.Products = append(s.Catalog.Products, *p)
		s.View = view.Reduce(s.View, view.ResetForm{})
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *workspaceUseCase) AddCategory(ctx context.Context, sessionID, name string) (*model.Category, error) {
	var created *model.Category
	_, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		c, err := uc.catalog.CreateCategory(ctx, &catalogdto.CreateCategoryInput{Name: name})
		if err != nil {
			return err
		}
		s.Catalog.Categories = append(s.Catalog.Categories, *c)
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *workspaceUseCase) AddType(ctx context.Context, sessionID, name string) (*model.ProductType, error) {
	var created *model.ProductType
	_, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		t, err := uc.catalog.CreateType(ctx, &catalogdto.CreateTypeInput{Name: name})
		if err != nil {
			return err
		}
		s.Catalog.Types = append(s.Catalog.Types, *t)
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *workspaceUseCase) AddPhone(ctx context.Context, sessionID string, input *dto.AddPhoneInput) (*model.Phone, error) {
	var created *model.Phone
	_, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		if input.TypeID != "" {
			if _, ok := s.Catalog.FindType(input.TypeID); !ok {
				return referenceMissing("typeId")
			}
		}
		p, err := uc.catalog.CreatePhone(ctx, &catalogdto.CreatePhoneInput{Name: input.Name, TypeID: input.TypeID})
		if err != nil {
			return err
		}
		s.Catalog.Phones = append(s.Catalog.Phones, *p)
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type cascadeFunc func(ctx context.Context, snap *model.Catalog, id string) (*catalogdto.CascadeResult, error)

func (uc *workspaceUseCase) DeleteCategory(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error) {
	return uc.cascade(ctx, sessionID, id, confirmed, uc.catalog.DeleteCategory, view.CategoryDeleted{ID: id})
}

func (uc *workspaceUseCase) DeleteType(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error) {
	return uc.cascade(ctx, sessionID, id, confirmed, uc.catalog.DeleteType, view.TypeDeleted{ID: id})
}

func (uc *workspaceUseCase) DeletePhone(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error) {
	return uc.cascade(ctx, sessionID, id, confirmed, uc.catalog.DeletePhone, view.PhoneDeleted{ID: id})
}

func (uc *workspaceUseCase) cascade(ctx context.Context, sessionID, id string, confirmed bool, del cascadeFunc, deleted view.Action) (*catalogdto.CascadeResult, error) {
	if !confirmed {
		return nil, apperr.New(apperr.KindConfirmation, "ConfirmationRequired",
			"this delete also removes dependent records; confirm to continue")
	}

	var res *catalogdto.CascadeResult
	_, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		var err error
		res, err = del(ctx, &s.Catalog, id)
		if err != nil {
			return err
		}
		s.View = view.Reduce(s.View, deleted)
		if res.Stale {
			s.Stale = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("cascading delete",
		zap.String("session_id", sessionID),
		zap.String("collection", res.Collection),
		zap.String("id", id),
		zap.Int("removed_phones", len(res.RemovedPhones)),
		zap.Int("removed_products", len(res.RemovedProducts)),
		zap.Int("cascade_errors", len(res.CascadeErrors)),
	)
	return res, nil
}

func (uc *workspaceUseCase) Cart(ctx context.Context, sessionID string) ([]cartdto.DetailedLine, error) {
	s, err := uc.read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := ready(s); err != nil {
		return nil, err
	}
	return cart.Detailed(s.Cart, s.Catalog.Products), nil
}

// AddToCart adds one unit. Products without stock are silently skipped.
func (uc *workspaceUseCase) AddToCart(ctx context.Context, sessionID, productID string) ([]cartdto.DetailedLine, error) {
	s, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		p, ok := s.Catalog.FindProduct(productID)
		if !ok {
			return apperr.NotFound("ProductNotFound", "product not found")
		}
		s.Cart = cart.Add(s.Cart, *p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart.Detailed(s.Cart, s.Catalog.Products), nil
}

func (uc *workspaceUseCase) UpdateCartQuantity(ctx context.Context, sessionID, productID string, qty int) ([]cartdto.DetailedLine, error) {
	s, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		s.Cart = cart.SetQuantity(s.Cart, productID, qty)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart.Detailed(s.Cart, s.Catalog.Products), nil
}

// Checkout submits the cart and clears it once the post-update refresh has
// been attempted, whatever its outcome.
func (uc *workspaceUseCase) Checkout(ctx context.Context, sessionID string) (*cartdto.CheckoutResult, error) {
	var res *cartdto.CheckoutResult
	_, err := uc.mutate(ctx, sessionID, true, func(ctx context.Context, s *workspace.State) error {
		if len(s.Cart) == 0 {
			return apperr.Validation("CartEmpty", "cart is empty")
		}

		var err error
		res, err = uc.engine.Submit(ctx, s.Cart, "")
		if err != nil {
			return err
		}

		if res.Refreshed {
			s.Catalog.Products = res.Products
		} else {
			for _, lr := range res.Lines {
				if lr.Status != cartdto.LineUpdated {
					continue
				}
				if p, ok := s.Catalog.FindProduct(lr.ProductID); ok {
					p.Stock = lr.NewStock
				}
			}
			s.Stale = true
		}
		s.Cart = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *workspaceUseCase) Export(ctx context.Context, sessionID string, w io.Writer) error {
	s, err := uc.read(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := ready(s); err != nil {
		return err
	}
	return export.Products(w, &s.Catalog, catalog.FilteredProducts(s.Catalog.Products, s.View.Filters))
}

func (uc *workspaceUseCase) Discard(ctx context.Context, sessionID string) error {
	return uc.repo.Delete(ctx, sessionID)
}

func (uc *workspaceUseCase) dispatch(ctx context.Context, sessionID string, actions ...view.Action) (*dto.WorkspaceView, error) {
	s, err := uc.mutate(ctx, sessionID, true, func(_ context.Context, s *workspace.State) error {
		s.View = view.ReduceAll(s.View, actions...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return render(s), nil
}

// mutate loads the state under the session lock, applies fn and saves the
// result. Nothing is saved when fn fails.
func (uc *workspaceUseCase) mutate(ctx context.Context, sessionID string, requireLoaded bool, fn func(ctx context.Context, s *workspace.State) error) (*workspace.State, error) {
	var out *workspace.State
	err := uc.repo.Lock(ctx, sessionID, func(ctx context.Context) error {
		s, err := uc.read(ctx, sessionID)
		if err != nil {
			return err
		}
		if requireLoaded {
			if err := ready(s); err != nil {
				return err
			}
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()
		if err := uc.repo.Save(ctx, sessionID, s); err != nil {
			uc.logger.Error("failed to save workspace", zap.String("session_id", sessionID), zap.Error(err))
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *workspaceUseCase) read(ctx context.Context, sessionID string) (*workspace.State, error) {
	s, err := uc.repo.Get(ctx, sessionID)
	if errors.Is(err, workspace.ErrNotFound) {
		return &workspace.State{}, nil
	}
	return s, err
}

func ready(s *workspace.State) error {
	if s.Loaded {
		return nil
	}
	if s.LoadError != "" {
		return apperr.New(apperr.KindUnavailable, "CatalogUnavailable", "catalog could not be loaded: "+s.LoadError).
			WithData(map[string]interface{}{"Reason": s.LoadError})
	}
	return apperr.New(apperr.KindUnavailable, "CatalogNotLoaded", "catalog is not loaded yet")
}

func productInput(snap *model.Catalog, f view.ProductForm) (*catalogdto.CreateProductInput, error) {
	fields := []struct{ name, value string }{
		{"name", f.Name},
		{"categoryId", f.CategoryID},
		{"typeId", f.TypeID},
		{"phoneId", f.PhoneID},
		{"color", f.Color},
		{"stock", f.Stock},
	}
	for _, fld := range fields {
		if strings.TrimSpace(fld.value) == "" {
			return nil, apperr.Validation("FieldRequired", fld.name+" is required").
				WithData(map[string]interface{}{"Field": fld.name})
		}
	}

	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil || stock < 0 {
		return nil, apperr.Validation("StockInvalid", "stock must be a non-negative integer")
	}

	if _, ok := snap.FindCategory(f.CategoryID); !ok {
		return nil, referenceMissing("categoryId")
	}
	if _, ok := snap.FindType(f.TypeID); !ok {
		return nil, referenceMissing("typeId")
	}
	phone, ok := snap.FindPhone(f.PhoneID)
	if !ok {
		return nil, referenceMissing("phoneId")
	}
	if phone.TypeID != f.TypeID {
		return nil, apperr.Validation("PhoneTypeMismatch", "phone does not belong to the selected type")
	}

	return &catalogdto.CreateProductInput{
		Name:       f.Name,
		CategoryID: f.CategoryID,
		TypeID:     f.TypeID,
		PhoneID:    f.PhoneID,
		Color:      f.Color,
		Stock:      &stock,
		Image:      f.Image,
	}, nil
}

func referenceMissing(field string) *apperr.Error {
	return apperr.Validation("ReferenceMissing", field+" does not match an existing record").
		WithData(map[string]interface{}{"Field": field})
}

func render(s *workspace.State) *dto.WorkspaceView {
	c := s.Catalog
	return &dto.WorkspaceView{
		Loaded:       s.Loaded,
		LoadError:    s.LoadError,
		Stale:        s.Stale,
		Categories:   orEmpty(c.Categories),
		Types:        orEmpty(c.Types),
		Phones:       orEmpty(c.Phones),
		Products:     catalog.FilteredProducts(c.Products, s.View.Filters),
		Colors:       catalog.AvailableColors(c.Products),
		FilterPhones: catalog.PhonesForType(c.Phones, s.View.Filters.TypeID),
		FormPhones:   catalog.PhonesForType(c.Phones, s.View.Form.TypeID),
		Filters:      s.View.Filters,
		Form:         s.View.Form,
		Cart:         cart.Detailed(s.Cart, c.Products),
		Total:        len(c.Products),
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
