package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"partsfit/internal/fitment"
	"partsfit/internal/params"
)

type fitmentRequest struct {
	VIN       string `json:"vin" example:"1HGCM82633A004352"`
	Year      any    `json:"year" swaggertype:"string" example:"2015"`
	Make      string `json:"make" example:"Honda"`
	Model     string `json:"model" example:"Accord"`
	BodyClass string `json:"bodyClass" example:"4dr Sedan"`
	DriveType string `json:"driveType" example:"FWD"`
}

// fitmentHandler godoc
//
//	@Summary		Find parts compatible with a vehicle
//	@Description	Matches a VIN-decoded vehicle against fitment records and returns the parts grouped by category.
//	@Description	Each group pages independently with the page_<category> query parameter.
//	@Tags			fitment
//	@Accept			json
//	@Produce		json
//	@Param			payload		body		fitmentRequest	true	"Decoded vehicle"
//	@Param			page_size	query		int				false	"Results per group (max 100)"
//	@Success		200			{object}	map[string]fitment.Group[fitment.PartView]
//	@Failure		400			{object}	error	"VIN is required"
//	@Failure		500			{object}	error
//	@Router			/fitment [post]
func (app *application) fitmentHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readJSONObject(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	vehicle, err := fitment.ParseVehicle(body)
	if err != nil {
		if errors.Is(err, fitment.ErrVINRequired) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := app.matcher.Match(ctx, vehicle)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	fitmentMatches.WithLabelValues(strconv.Itoa(res.Tier)).Inc()

	app.logger.Infow("fitment matched",
		"make", vehicle.Make,
		"model", vehicle.Model,
		"year", vehicle.Year,
		"tier", res.Tier,
		"count", len(res.Records),
	)

	sel := fitment.NewPageSelector(absoluteURL(r))
	grouped := fitment.GroupParts(res.Records, sel, params.PageSize(r.URL.Query()))

	if err := writeJSON(w, http.StatusOK, grouped); err != nil {
		app.internalServerError(w, r, err)
	}
}

// absoluteURL rebuilds the request URL with scheme and host so page links
// can be followed as-is.
func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		u.Scheme = proto
	}
	return &u
}
