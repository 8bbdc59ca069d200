package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/api/responses"
	"github.com/balcao-pos/backend/api/validators"
	"github.com/balcao-pos/backend/internal/catalog"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/logger"
)

type productView struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int       `json:"priceCents"`
	StockQty   int       `json:"stockQty"`
}

// ListProducts serves the active catalog the counter builds carts from.
func ListProducts(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		merchantID, err := validators.UUIDQuery(r, "merchantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := repo.ListActiveProducts(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productView, 0, len(products))
		for _, product := range products {
			views = append(views, productView{
				ID:         product.ID,
				SKU:        product.SKU,
				Name:       product.Name,
				PriceCents: product.PriceCents(),
				StockQty:   product.StockQty,
			})
		}
		responses.WriteSuccess(w, views)
	}
}
