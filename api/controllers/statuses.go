package controllers

import (
	"net/http"

	"github.com/sproutlane/microfarm-backend/api/responses"
	"github.com/sproutlane/microfarm-backend/internal/statuses"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

type statusCatalogEntry struct {
	Code        enums.OrderStatusCode   `json:"code"`
	Name        string                  `json:"name"`
	Stage       enums.OrderStage        `json:"stage"`
	IsFinal     bool                    `json:"isFinal"`
	SortOrder   int                     `json:"sortOrder"`
	AllowedNext []enums.OrderStatusCode `json:"allowedNext"`
}

// StatusCatalog exposes the status graph so clients can render pickers
// without hardcoding the lifecycle.
func StatusCatalog(registry *statuses.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := registry.Catalog()
		entries := make([]statusCatalogEntry, 0, len(catalog))
		for _, def := range catalog {
			entries = append(entries, statusCatalogEntry{
				Code:        def.Code,
				Name:        def.Name,
				Stage:       def.Stage,
				IsFinal:     def.IsFinal,
				SortOrder:   def.SortOrder,
				AllowedNext: registry.AllowedNext(def.Code),
			})
		}
		responses.WriteSuccess(w, entries)
	}
}
