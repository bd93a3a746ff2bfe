package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"partsfit/internal/domain/catalog"
	"partsfit/internal/params"
)

// listCategoriesHandler godoc
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Param		page		query		int	false	"Page"
//	@Param		page_size	query		int	false	"Page size (max 100)"
//	@Success	200			{object}	map[string]any
//	@Router		/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pg := params.ParsePagination(r.URL.Query())
	items, total, err := app.store.Categories.ListCategories(ctx, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list categories: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"categories": items,
		"pagination": pg,
	})
}

// getCategoryHandler godoc
//
//	@Summary	Get a category by slug
//	@Tags		categories
//	@Produce	json
//	@Param		slug	path		string	true	"Category slug"
//	@Success	200		{object}	catalog.Category
//	@Failure	404		{object}	error
//	@Router		/categories/{slug} [get]
func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := app.store.Categories.GetCategoryBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, c)
}

// listChildCategoriesHandler godoc
//
//	@Summary		List direct children of a category
//	@Description	Responds with a plain array; an existing category without children yields [].
//	@Tags			categories
//	@Produce		json
//	@Param			slug	path	string	true	"Parent category slug"
//	@Success		200		{array}	catalog.Category
//	@Failure		404		{object}	error
//	@Router			/categories/{slug}/children [get]
func (app *application) listChildCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	parent, err := app.store.Categories.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.notFoundResponse(w, r, fmt.Errorf("category %q not found", slug))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	children, err := app.store.Categories.ListChildCategories(ctx, parent.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if children == nil {
		children = []*catalog.Category{}
	}

	writeJSON(w, http.StatusOK, children)
}

type createCategoryPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	ParentID    *int64 `json:"parent_id" validate:"omitempty,gt=0"`
	Description string `json:"description"`
}

// createCategoryHandler godoc
//
//	@Summary	Create a category
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		createCategoryPayload	true	"Category"
//	@Success	201		{object}	catalog.Category
//	@Failure	400		{object}	error
//	@Failure	409		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/admin/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var in createCategoryPayload
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

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := app.store.Categories.CreateCategory(ctx, &catalog.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		ParentID:    in.ParentID,
		Description: in.Description,
	})
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheProducts, cacheParts)

	w.Header().Set("Location", fmt.Sprintf("/v1/categories/%s", created.Slug))
	app.jsonResponse(w, http.StatusCreated, created)
}

// getCategoryByIDHandler godoc
//
//	@Summary	Get a category by id
//	@Tags		admin
//	@Produce	json
//	@Param		categoryID	path		int	true	"Category ID"
//	@Success	200			{object}	catalog.Category
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/admin/categories/{categoryID} [get]
func (app *application) getCategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := app.store.Categories.GetCategoryByID(ctx, id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, c)
}

type updateCategoryPayload struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=120"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gt=0"`
	Description *string `json:"description"`
}

// updateCategoryHandler godoc
//
//	@Summary		Update a category
//	@Description	Only supplied fields change. Renaming keeps the slug.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			categoryID	path		int						true	"Category ID"
//	@Param			payload		body		updateCategoryPayload	true	"Fields to change"
//	@Success		200			{object}	catalog.Category
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/categories/{categoryID} [patch]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in updateCategoryPayload
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

	c, err := app.store.Categories.GetCategoryByID(ctx, id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		c.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.ParentID != nil {
		c.ParentID = in.ParentID
	}
	if in.Description != nil {
		c.Description = *in.Description
	}

	updated, err := app.store.Categories.UpdateCategory(ctx, c)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheProducts, cacheParts)
	app.jsonResponse(w, http.StatusOK, updated)
}

// deleteCategoryHandler godoc
//
//	@Summary		Delete a category
//	@Description	Child categories and products keep existing without a parent/category.
//	@Tags			admin
//	@Param			categoryID	path	int	true	"Category ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/categories/{categoryID} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Categories.DeleteCategory(ctx, id); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheProducts, cacheParts)
	w.WriteHeader(http.StatusNoContent)
}
