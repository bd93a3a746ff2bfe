package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"partsfit/internal/domain/catalog"
	"partsfit/internal/fitment"
	"partsfit/internal/params"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, idStr)
	}
	return id, nil
}

// listPartsHandler godoc
//
//	@Summary		List fitment records
//	@Description	Public parts listing with filters. Responses are cached for ten minutes.
//	@Tags			parts
//	@Produce		json
//	@Param			category	query		string	false	"Category slug"
//	@Param			make		query		string	false	"Make, exact ignoring case"
//	@Param			model		query		string	false	"Model, exact ignoring case"
//	@Param			body_class	query		string	false	"Body class contains"
//	@Param			drive_type	query		string	false	"Drive type contains"
//	@Param			search		query		string	false	"Product name contains"
//	@Param			ordering	query		string	false	"price, -price, stars, -stars"
//	@Param			page		query		int		false	"Page"
//	@Param			page_size	query		int		false	"Page size (max 100)"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Router			/parts [get]
func (app *application) listPartsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	ordering := strings.TrimSpace(q.Get("ordering"))
	if ordering != "" && !catalog.FitmentOrderingAllowed(ordering) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid ordering: %s", ordering))
		return
	}

	pg := params.ParsePagination(q)
	filter := catalog.FitmentFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Make:         strings.TrimSpace(q.Get("make")),
		Model:        strings.TrimSpace(q.Get("model")),
		BodyClass:    q.Get("body_class"),
		DriveType:    q.Get("drive_type"),
		Search:       q.Get("search"),
		Ordering:     ordering,
		Limit:        pg.Limit,
		Offset:       pg.Offset,
	}

	records, total, err := app.store.Fitments.ListFitments(ctx, filter)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("list parts: %w", err))
		return
	}
	pg.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"parts":      fitment.ProjectAll(records),
		"pagination": pg,
	})
}

// getPartHandler godoc
//
//	@Summary	Get one fitment record
//	@Tags		parts
//	@Produce	json
//	@Param		partID	path		int	true	"Part ID"
//	@Success	200		{object}	fitment.PartView
//	@Failure	404		{object}	error
//	@Router		/parts/{partID} [get]
func (app *application) getPartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "partID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := app.store.Fitments.GetFitmentDetail(ctx, id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, fitment.Project(*d))
}

type createPartPayload struct {
	ProductID *int64  `json:"product_id" validate:"omitempty,gt=0"`
	Make      string  `json:"make" validate:"required,max=100"`
	Model     string  `json:"model" validate:"required,max=100"`
	YearStart int     `json:"year_start" validate:"gte=1900,lte=2100"`
	YearEnd   int     `json:"year_end" validate:"gte=1900,lte=2100,gtefield=YearStart"`
	Trim      *string `json:"trim" validate:"omitempty,max=100"`
	DriveType *string `json:"drive_type" validate:"omitempty,max=100"`
	BodyClass *string `json:"body_class" validate:"omitempty,max=100"`
}

// createPartHandler godoc
//
//	@Summary	Create a fitment record
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		createPartPayload	true	"Fitment record"
//	@Success	201		{object}	catalog.FitmentRecord
//	@Failure	400		{object}	error
//	@Failure	401		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/admin/parts [post]
func (app *application) createPartHandler(w http.ResponseWriter, r *http.Request) {
	var in createPartPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := app.store.Fitments.CreateFitment(ctx, &catalog.FitmentRecord{
		ProductID: in.ProductID,
		Make:      strings.TrimSpace(in.Make),
		Model:     strings.TrimSpace(in.Model),
		YearStart: in.YearStart,
		YearEnd:   in.YearEnd,
		Trim:      in.Trim,
		DriveType: in.DriveType,
		BodyClass: in.BodyClass,
	})
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheParts)

	w.Header().Set("Location", fmt.Sprintf("/v1/parts/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

type updatePartPayload struct {
	ProductID *int64  `json:"product_id" validate:"omitempty,gt=0"`
	Make      *string `json:"make" validate:"omitempty,min=1,max=100"`
	Model     *string `json:"model" validate:"omitempty,min=1,max=100"`
	YearStart *int    `json:"year_start" validate:"omitempty,gte=1900,lte=2100"`
	YearEnd   *int    `json:"year_end" validate:"omitempty,gte=1900,lte=2100"`
	Trim      *string `json:"trim" validate:"omitempty,max=100"`
	DriveType *string `json:"drive_type" validate:"omitempty,max=100"`
	BodyClass *string `json:"body_class" validate:"omitempty,max=100"`
}

// updatePartHandler godoc
//
//	@Summary	Update a fitment record
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		partID	path		int					true	"Part ID"
//	@Param		payload	body		updatePartPayload	true	"Fields to change"
//	@Success	200		{object}	catalog.FitmentRecord
//	@Failure	400		{object}	error
//	@Failure	404		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/admin/parts/{partID} [patch]
func (app *application) updatePartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "partID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in updatePartPayload
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	current, err := app.store.Fitments.GetFitmentDetail(ctx, id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	rec := current.Record
	if in.ProductID != nil {
		rec.ProductID = in.ProductID
	}
	if in.Make != nil {
		rec.Make = strings.TrimSpace(*in.Make)
	}
	if in.Model != nil {
		rec.Model = strings.TrimSpace(*in.Model)
	}
	if in.YearStart != nil {
		rec.YearStart = *in.YearStart
	}
	if in.YearEnd != nil {
		rec.YearEnd = *in.YearEnd
	}
	if in.Trim != nil {
		rec.Trim = in.Trim
	}
	if in.DriveType != nil {
		rec.DriveType = in.DriveType
	}
	if in.BodyClass != nil {
		rec.BodyClass = in.BodyClass
	}

	updated, err := app.store.Fitments.UpdateFitment(ctx, &rec)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheParts)
	app.jsonResponse(w, http.StatusOK, updated)
}

// deletePartHandler godoc
//
//	@Summary	Delete a fitment record
//	@Tags		admin
//	@Param		partID	path	int	true	"Part ID"
//	@Success	204
//	@Failure	404	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/admin/parts/{partID} [delete]
func (app *application) deletePartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "partID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Fitments.DeleteFitment(ctx, id); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.invalidateListings(ctx, cacheParts)
	w.WriteHeader(http.StatusNoContent)
}
