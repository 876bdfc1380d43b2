package statuses

import (
	"sort"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
)

// Definition is one entry of the fixed status catalog.
type Definition struct {
	Code      enums.OrderStatusCode
	Name      string
	Stage     enums.OrderStage
	IsFinal   bool
	SortOrder int
}

// catalog is the complete status catalog. Statuses move forward through the
// four stages; the template status sits outside the workflow entirely.
var catalog = []Definition{
	{Code: enums.OrderStatusTemplate, Name: "Template", Stage: enums.StagePreProduction, IsFinal: false, SortOrder: 0},
	{Code: enums.OrderStatusPending, Name: "Pending", Stage: enums.StagePreProduction, IsFinal: false, SortOrder: 10},
	{Code: enums.OrderStatusConfirmed, Name: "Confirmed", Stage: enums.StagePreProduction, IsFinal: false, SortOrder: 20},
	{Code: enums.OrderStatusProcessing, Name: "Processing", Stage: enums.StageProduction, IsFinal: false, SortOrder: 30},
	{Code: enums.OrderStatusGrowing, Name: "Growing", Stage: enums.StageProduction, IsFinal: false, SortOrder: 40},
	{Code: enums.OrderStatusReadyToHarvest, Name: "Ready to Harvest", Stage: enums.StageProduction, IsFinal: false, SortOrder: 50},
	{Code: enums.OrderStatusHarvesting, Name: "Harvesting", Stage: enums.StageProduction, IsFinal: false, SortOrder: 60},
	{Code: enums.OrderStatusPacking, Name: "Packing", Stage: enums.StageFulfillment, IsFinal: false, SortOrder: 70},
	{Code: enums.OrderStatusReadyForDelivery, Name: "Ready for Delivery", Stage: enums.StageFulfillment, IsFinal: false, SortOrder: 80},
	{Code: enums.OrderStatusDelivered, Name: "Delivered", Stage: enums.StageFulfillment, IsFinal: true, SortOrder: 90},
	{Code: enums.OrderStatusCompleted, Name: "Completed", Stage: enums.StageFinal, IsFinal: true, SortOrder: 100},
	{Code: enums.OrderStatusCancelled, Name: "Cancelled", Stage: enums.StageFinal, IsFinal: true, SortOrder: 110},
}

// transitions enumerates every legal edge. The processing -> confirmed edge is
// the single backward correction path. Final statuses have no outgoing edges
// and templates never transition.
var transitions = [][2]enums.OrderStatusCode{
	{enums.OrderStatusPending, enums.OrderStatusConfirmed},
	{enums.OrderStatusPending, enums.OrderStatusCancelled},
	{enums.OrderStatusConfirmed, enums.OrderStatusProcessing},
	{enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	{enums.OrderStatusProcessing, enums.OrderStatusConfirmed},
	{enums.OrderStatusProcessing, enums.OrderStatusGrowing},
	{enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	{enums.OrderStatusGrowing, enums.OrderStatusReadyToHarvest},
	{enums.OrderStatusGrowing, enums.OrderStatusCancelled},
	{enums.OrderStatusReadyToHarvest, enums.OrderStatusHarvesting},
	{enums.OrderStatusReadyToHarvest, enums.OrderStatusCancelled},
	{enums.OrderStatusHarvesting, enums.OrderStatusPacking},
	{enums.OrderStatusHarvesting, enums.OrderStatusCancelled},
	{enums.OrderStatusPacking, enums.OrderStatusReadyForDelivery},
	{enums.OrderStatusPacking, enums.OrderStatusCancelled},
	{enums.OrderStatusReadyForDelivery, enums.OrderStatusDelivered},
	{enums.OrderStatusReadyForDelivery, enums.OrderStatusCompleted},
	{enums.OrderStatusReadyForDelivery, enums.OrderStatusCancelled},
}

// Registry holds the immutable status catalog and transition graph. Built once
// at process start and treated as read-only configuration afterwards.
type Registry struct {
	byCode map[enums.OrderStatusCode]Definition
	edges  map[enums.OrderStatusCode]map[enums.OrderStatusCode]struct{}
}

// NewRegistry builds the registry from the fixed catalog.
func NewRegistry() *Registry {
	r := &Registry{
		byCode: make(map[enums.OrderStatusCode]Definition, len(catalog)),
		edges:  make(map[enums.OrderStatusCode]map[enums.OrderStatusCode]struct{}, len(catalog)),
	}
	for _, def := range catalog {
		r.byCode[def.Code] = def
		r.edges[def.Code] = make(map[enums.OrderStatusCode]struct{})
	}
	for _, edge := range transitions {
		r.edges[edge[0]][edge[1]] = struct{}{}
	}
	return r
}

// Get resolves a status definition by code.
func (r *Registry) Get(code enums.OrderStatusCode) (Definition, error) {
	def, ok := r.byCode[code]
	if !ok {
		return Definition{}, pkgerrors.Newf(pkgerrors.CodeUnknownStatus, "unknown order status %q", code).
			WithDetails(map[string]any{"code": code.String()})
	}
	return def, nil
}

// IsValidTransition reports whether the edge (from, to) exists in the graph.
// Unknown codes fail with UNKNOWN_STATUS, missing edges with INVALID_TRANSITION.
func (r *Registry) IsValidTransition(from, to enums.OrderStatusCode) error {
	if _, err := r.Get(from); err != nil {
		return err
	}
	if _, err := r.Get(to); err != nil {
		return err
	}
	if _, ok := r.edges[from][to]; !ok {
		return pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "transition %s -> %s is not allowed", from, to).
			WithDetails(map[string]any{
				"from":    from.String(),
				"to":      to.String(),
				"allowed": codesToStrings(r.AllowedNext(from)),
			})
	}
	return nil
}

// AllowedNext returns the outgoing edges of a status in catalog order. Unknown
// and final statuses yield an empty set.
func (r *Registry) AllowedNext(from enums.OrderStatusCode) []enums.OrderStatusCode {
	targets, ok := r.edges[from]
	if !ok || len(targets) == 0 {
		return nil
	}
	next := make([]enums.OrderStatusCode, 0, len(targets))
	for code := range targets {
		next = append(next, code)
	}
	sort.Slice(next, func(i, j int) bool {
		return r.byCode[next[i]].SortOrder < r.byCode[next[j]].SortOrder
	})
	return next
}

// Catalog returns a copy of the status catalog in sort order.
func (r *Registry) Catalog() []Definition {
	defs := make([]Definition, len(catalog))
	copy(defs, catalog)
	return defs
}

// CatalogRows converts the catalog to persistence rows for seeding/reporting.
func (r *Registry) CatalogRows() []models.OrderStatus {
	rows := make([]models.OrderStatus, 0, len(catalog))
	for _, def := range catalog {
		rows = append(rows, models.OrderStatus{
			Code:      def.Code,
			Name:      def.Name,
			Stage:     def.Stage,
			IsFinal:   def.IsFinal,
			SortOrder: def.SortOrder,
		})
	}
	return rows
}

// TransitionRows converts the edge list to persistence rows.
func (r *Registry) TransitionRows() []models.OrderStatusTransition {
	rows := make([]models.OrderStatusTransition, 0, len(transitions))
	for _, edge := range transitions {
		rows = append(rows, models.OrderStatusTransition{FromCode: edge[0], ToCode: edge[1]})
	}
	return rows
}

func codesToStrings(codes []enums.OrderStatusCode) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, code.String())
	}
	return out
}
