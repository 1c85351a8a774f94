package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tobikareem/desola-flights/internal/aggregator"
	"github.com/tobikareem/desola-flights/internal/models"
)

type SearchHandler struct {
	aggregator *aggregator.Aggregator
}

func NewSearchHandler(agg *aggregator.Aggregator) *SearchHandler {
	return &SearchHandler{aggregator: agg}
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var query models.SearchQuery
	if err := c.Bind(&query); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	result, validationErrs := h.aggregator.Handle(ctx, query)
	if len(validationErrs) > 0 {
		return c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
			Error:  "validation_error",
			Fields: validationErrs,
		})
	}

	return c.JSON(http.StatusOK, models.SearchResult{
		SearchCriteria: buildSearchCriteria(query),
		Metadata: models.SearchMetadata{
			TotalResults:       result.Response.Total,
			ProvidersQueried:   result.ProvidersQueried,
			ProvidersSucceeded: result.ProvidersSucceeded,
			ProvidersFailed:    result.ProvidersFailed,
			FailedProviders:    result.FailedProviders,
			Outcome:            result.Outcome.String(),
			SearchTimeMs:       result.Elapsed.Milliseconds(),
		},
		Currency: result.Response.Currency,
		Offers:   result.Response.Offers,
	})
}

// Stats exposes the per-provider performance counters for diagnostics.
func (h *SearchHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.aggregator.Stats())
}

func buildSearchCriteria(query models.SearchQuery) models.SearchCriteria {
	return models.SearchCriteria{
		Origin:        query.Origin,
		Destination:   query.Destination,
		DepartureDate: query.DepartureDate,
		ReturnDate:    query.ReturnDate,
		Adults:        query.Adults,
		Children:      query.Children,
		Infants:       query.Infants,
		CabinClass:    query.CabinClass,
	}
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
