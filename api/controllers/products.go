package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qrobotics/qrobotics-backend/api/responses"
	"github.com/qrobotics/qrobotics-backend/api/validators"
	productsvc "github.com/qrobotics/qrobotics-backend/internal/products"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

type createProductRequest struct {
	Name              string   `json:"name" validate:"required"`
	Description       string   `json:"description"`
	Price             string   `json:"price" validate:"required"`
	ProductCode       *string  `json:"product_code,omitempty"`
	Quantity          int      `json:"quantity" validate:"min=0"`
	CategoryID        *int64   `json:"category_id,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	IsAvailable       *bool    `json:"is_available,omitempty"`
	LowStockThreshold int      `json:"low_stock_threshold" validate:"min=0"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return price, nil
}

func (req createProductRequest) toInput() (productsvc.CreateProductInput, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	return productsvc.CreateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             price,
		ProductCode:       req.ProductCode,
		Quantity:          req.Quantity,
		CategoryID:        req.CategoryID,
		Tags:              req.Tags,
		IsAvailable:       req.IsAvailable,
		LowStockThreshold: req.LowStockThreshold,
	}, nil
}

// GetProduct serves the full product payload, admin surface.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *string   `json:"price,omitempty"`
	ProductCode *string   `json:"product_code,omitempty"`
	Quantity    *int      `json:"quantity,omitempty" validate:"omitempty,min=0"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	ClearCode   bool      `json:"clear_product_code,omitempty"`
	ClearCat    bool      `json:"clear_category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsAvailable *bool     `json:"is_available,omitempty"`
}

func (req updateProductRequest) toInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		ProductCode: req.ProductCode,
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
		ClearCode:   req.ClearCode,
		ClearCat:    req.ClearCat,
		Tags:        req.Tags,
		IsAvailable: req.IsAvailable,
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.Price = &price
	}
	return input, nil
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a product and its dependents. Media destroy failures
// surface as a warning on the success envelope.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeleteProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Warning != "" {
			responses.WriteSuccessWarning(w, result, result.Warning)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// SetProductQuantity reconciles stock; availability follows the new count.
func SetProductQuantity(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inventory, err := svc.SetQuantity(r.Context(), id, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventory)
	}
}
