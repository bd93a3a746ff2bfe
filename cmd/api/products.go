package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"partsfit/internal/domain/catalog"
	"partsfit/internal/params"
)

func parsePriceParam(raw, name string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return &d, nil
}

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Filter by category slug (the category and its direct children) and price range. Cached for ten minutes.
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Category slug"
//	@Param			min_price	query		number	false	"Minimum price, inclusive"
//	@Param			max_price	query		number	false	"Maximum price, inclusive"
//	@Param			ordering	query		string	false	"price, -price, stars, -stars, name, -name, updated_at, -updated_at"
//	@Param			page		query		int		false	"Page"
//	@Param			page_size	query		int		false	"Page size (max 100)"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	app.listProducts(w, r, strings.TrimSpace(r.URL.Query().Get("category")))
}

// adminListProductsHandler godoc
//
//	@Summary	List products for the admin
//	@Tags		admin
//	@Produce	json
//	@Param		page		query		int	false	"Page"
//	@Param		page_size	query		int	false	"Page size (max 100)"
//	@Success	200			{object}	map[string]any
//	@Security	ApiKeyAuth
//	@Router		/admin/products [get]
func (app *application) adminListProductsHandler(w http.ResponseWriter, r *http.Request) {
	app.listProducts(w, r, strings.TrimSpace(r.URL.Query().Get("category")))
}

func (app *application) listProducts(w http.ResponseWriter, r *http.Request, categorySlug string) {
	q := r.URL.Query()

	ordering := strings.TrimSpace(q.Get("ordering"))
	if ordering != "" && !catalog.ProductOrderingAllowed(ordering) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid ordering: %s", ordering))
		return
	}
	minPrice, err := parsePriceParam(q.Get("min_price"), "min_price")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	maxPrice, err := parsePriceParam(q.Get("max_price"), "max_price")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pg := params.ParsePagination(q)
	items, total, err := app.store.Products.ListProducts(ctx, catalog.ProductFilter{
		CategorySlug: categorySlug,
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Ordering:     ordering,
		Limit:        pg.Limit,
		Offset:       pg.Offset,
	})
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list products: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"products":   items,
		"pagination": pg,
		"filters": map[string]any{
			"category":  categorySlug,
			"min_price": minPrice,
			"max_price": maxPrice,
			"ordering":  ordering,
		},
	})
}

// listAllProductsHandler godoc
//
//	@Summary	List every product
//	@Tags		products
//	@Produce	json
//	@Success	200	{array}	catalog.Product
//	@Router		/products/all [get]
func (app *application) listAllProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := app.store.Products.ListAllProducts(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, items)
}

// getProductDetailHandler godoc
//
//	@Summary	Product detail
//	@Tags		products
//	@Produce	json
//	@Param		slug	path		string	true	"Product slug"
//	@Success	200		{object}	catalog.ProductDetail
//	@Failure	404		{object}	error
//	@Router		/products/{slug} [get]
func (app *application) getProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		app.badRequestResponse(w, r, fmt.Errorf("slug is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := app.store.Products.GetProductDetailBySlug(ctx, slug)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, detail)
}

// getProductByIDHandler godoc
//
//	@Summary	Get a product with its images
//	@Tags		admin
//	@Produce	json
//	@Param		productID	path		int	true	"Product ID"
//	@Success	200			{object}	map[string]any
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/admin/products/{productID} [get]
func (app *application) getProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := app.store.Products.GetProductByID(ctx, id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	images, err := app.store.Products.ListProductImages(ctx, id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"product": p,
		"images":  images,
	})
}

type productImagePayload struct {
	ImageURL  string  `json:"image_url" validate:"required,url"`
	Alt       *string `json:"alt" validate:"omitempty,max=255"`
	IsPrimary bool    `json:"is_primary"`
}

func (p productImagePayload) toImage() *catalog.ProductImage {
	return &catalog.ProductImage{ImageURL: p.ImageURL, Alt: p.Alt, IsPrimary: p.IsPrimary}
}

func toImages(in []productImagePayload) []*catalog.ProductImage {
	out := make([]*catalog.ProductImage, 0, len(in))
	for _, img := range in {
		out = append(out, img.toImage())
	}
	return out
}

type createProductPayload struct {
	Name         string                `json:"name" validate:"required,max=200"`
	Slug         string                `json:"slug" validate:"omitempty,max=120"`
	ImageURL     *string               `json:"image_url" validate:"omitempty,url"`
	Price        decimal.Decimal       `json:"price" swaggertype:"number" validate:"gte=0"`
	Stars        *float64              `json:"stars" validate:"omitempty,gte=0,lte=9.9"`
	CategoryID   *int64                `json:"category_id" validate:"omitempty,gt=0"`
	StockStatus  *bool                 `json:"stock_status"`
	Warranty     int                   `json:"warranty" validate:"gte=0,lte=100"`
	DeliveryDays int                   `json:"delivery_days" validate:"gte=0,lte=365"`
	ReturnDays   int                   `json:"return_days" validate:"gte=0,lte=365"`
	Description  string                `json:"description"`
	Images       []productImagePayload `json:"images" validate:"omitempty,dive"`
}

// createProductHandler godoc
//
//	@Summary		Create a product
//	@Description	The slug is derived from the name when omitted and suffixed (-1, -2, ...) until unique.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createProductPayload	true	"Product"
//	@Success		201		{object}	catalog.Product
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error	"Explicit slug already taken"
//	@Security		ApiKeyAuth
//	@Router			/admin/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var in createProductPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	slug := strings.TrimSpace(in.Slug)
	if slug != "" && !catalog.IsValidSlug(slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	inStock := true
	if in.StockStatus != nil {
		inStock = *in.StockStatus
	}

	p := &catalog.Product{
		Name:         strings.TrimSpace(in.Name),
		Slug:         slug,
		ImageURL:     in.ImageURL,
		Price:        in.Price.Round(2),
		Stars:        in.Stars,
		CategoryID:   in.CategoryID,
		StockStatus:  inStock,
		Warranty:     in.Warranty,
		DeliveryDays: in.DeliveryDays,
		ReturnDays:   in.ReturnDays,
		Description:  in.Description,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := app.store.Products.CreateProduct(ctx, p, toImages(in.Images))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheProducts, cacheParts)

	w.Header().Set("Location", fmt.Sprintf("/v1/products/%s", created.Slug))
	app.jsonResponse(w, http.StatusCreated, created)
}

type updateProductPayload struct {
	Name         *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Slug         *string                `json:"slug" validate:"omitempty,max=120"`
	ImageURL     *string                `json:"image_url" validate:"omitempty,url"`
	Price        *decimal.Decimal       `json:"price" swaggertype:"number" validate:"omitempty,gte=0"`
	Stars        *float64               `json:"stars" validate:"omitempty,gte=0,lte=9.9"`
	CategoryID   *int64                 `json:"category_id" validate:"omitempty,gt=0"`
	StockStatus  *bool                  `json:"stock_status"`
	Warranty     *int                   `json:"warranty" validate:"omitempty,gte=0,lte=100"`
	DeliveryDays *int                   `json:"delivery_days" validate:"omitempty,gte=0,lte=365"`
	ReturnDays   *int                   `json:"return_days" validate:"omitempty,gte=0,lte=365"`
	Description  *string                `json:"description"`
	Images       *[]productImagePayload `json:"images" validate:"omitempty,dive"`
}

// updateProductHandler godoc
//
//	@Summary		Update a product
//	@Description	Only supplied fields change. A supplied images array replaces every image; omit it to keep them.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int						true	"Product ID"
//	@Param			payload		body		updateProductPayload	true	"Fields to change"
//	@Success		200			{object}	catalog.Product
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/products/{productID} [patch]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in updateProductPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}
	if in.Slug != nil && !catalog.IsValidSlug(strings.TrimSpace(*in.Slug)) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := app.store.Products.GetProductByID(ctx, id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	// renaming never touches the slug
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		p.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.ImageURL != nil {
		p.ImageURL = in.ImageURL
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.Stars != nil {
		p.Stars = in.Stars
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.StockStatus != nil {
		p.StockStatus = *in.StockStatus
	}
	if in.Warranty != nil {
		p.Warranty = *in.Warranty
	}
	if in.DeliveryDays != nil {
		p.DeliveryDays = *in.DeliveryDays
	}
	if in.ReturnDays != nil {
		p.ReturnDays = *in.ReturnDays
	}
	if in.Description != nil {
		p.Description = *in.Description
	}

	var images []*catalog.ProductImage
	if in.Images != nil {
		images = toImages(*in.Images)
	}

	updated, err := app.store.Products.UpdateProduct(ctx, p, images)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheProducts, cacheParts)
	app.jsonResponse(w, http.StatusOK, updated)
}

// deleteProductHandler godoc
//
//	@Summary		Delete a product
//	@Description	Images are deleted with it; fitment records are kept without a product.
//	@Tags			admin
//	@Param			productID	path	int	true	"Product ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/products/{productID} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Products.DeleteProduct(ctx, id); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheProducts, cacheParts)
	w.WriteHeader(http.StatusNoContent)
}
