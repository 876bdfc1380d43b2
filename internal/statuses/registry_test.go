package statuses

import (
	"testing"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
)

func TestRegistryHappyPath(t *testing.T) {
	registry := NewRegistry()
	pairs := [][2]enums.OrderStatusCode{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed},
		{enums.OrderStatusConfirmed, enums.OrderStatusProcessing},
		{enums.OrderStatusProcessing, enums.OrderStatusGrowing},
		{enums.OrderStatusGrowing, enums.OrderStatusReadyToHarvest},
		{enums.OrderStatusReadyToHarvest, enums.OrderStatusHarvesting},
		{enums.OrderStatusHarvesting, enums.OrderStatusPacking},
		{enums.OrderStatusPacking, enums.OrderStatusReadyForDelivery},
		{enums.OrderStatusReadyForDelivery, enums.OrderStatusDelivered},
		{enums.OrderStatusReadyForDelivery, enums.OrderStatusCompleted},
	}
	for _, pair := range pairs {
		if err := registry.IsValidTransition(pair[0], pair[1]); err != nil {
			t.Fatalf("expected %s -> %s to be valid, got %v", pair[0], pair[1], err)
		}
	}
}

func TestRegistryBackwardCorrectionEdge(t *testing.T) {
	registry := NewRegistry()
	if err := registry.IsValidTransition(enums.OrderStatusProcessing, enums.OrderStatusConfirmed); err != nil {
		t.Fatalf("processing -> confirmed should be allowed: %v", err)
	}
	if err := registry.IsValidTransition(enums.OrderStatusGrowing, enums.OrderStatusProcessing); err == nil {
		t.Fatalf("growing -> processing should be rejected")
	}
}

func TestRegistryRejectsMissingEdges(t *testing.T) {
	registry := NewRegistry()
	cases := [][2]enums.OrderStatusCode{
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
		{enums.OrderStatusPending, enums.OrderStatusGrowing},
		{enums.OrderStatusDelivered, enums.OrderStatusCompleted},
		{enums.OrderStatusCancelled, enums.OrderStatusPending},
		{enums.OrderStatusTemplate, enums.OrderStatusPending},
		{enums.OrderStatusPacking, enums.OrderStatusPacking},
	}
	for _, pair := range cases {
		err := registry.IsValidTransition(pair[0], pair[1])
		if err == nil {
			t.Fatalf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
		if !pkgerrors.Is(err, pkgerrors.CodeInvalidTransition) {
			t.Fatalf("expected INVALID_TRANSITION for %s -> %s, got %v", pair[0], pair[1], err)
		}
	}
}

func TestRegistryUnknownStatus(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Get("vaporized"); !pkgerrors.Is(err, pkgerrors.CodeUnknownStatus) {
		t.Fatalf("expected UNKNOWN_STATUS, got %v", err)
	}
	if err := registry.IsValidTransition("vaporized", enums.OrderStatusPending); !pkgerrors.Is(err, pkgerrors.CodeUnknownStatus) {
		t.Fatalf("expected UNKNOWN_STATUS for bad from code, got %v", err)
	}
	if err := registry.IsValidTransition(enums.OrderStatusPending, "vaporized"); !pkgerrors.Is(err, pkgerrors.CodeUnknownStatus) {
		t.Fatalf("expected UNKNOWN_STATUS for bad to code, got %v", err)
	}
}

func TestRegistryFinalStatusesHaveNoEdges(t *testing.T) {
	registry := NewRegistry()
	for _, def := range registry.Catalog() {
		if !def.IsFinal {
			continue
		}
		if next := registry.AllowedNext(def.Code); len(next) != 0 {
			t.Fatalf("final status %s has outgoing edges %v", def.Code, next)
		}
	}
}

func TestRegistryTemplateIsIsolated(t *testing.T) {
	registry := NewRegistry()
	if next := registry.AllowedNext(enums.OrderStatusTemplate); len(next) != 0 {
		t.Fatalf("template status should have no outgoing edges, got %v", next)
	}
	for _, def := range registry.Catalog() {
		if err := registry.IsValidTransition(def.Code, enums.OrderStatusTemplate); err == nil {
			t.Fatalf("no status should transition into template, but %s does", def.Code)
		}
	}
}

func TestRegistryAllowedNextOrdering(t *testing.T) {
	registry := NewRegistry()
	next := registry.AllowedNext(enums.OrderStatusReadyForDelivery)
	want := []enums.OrderStatusCode{
		enums.OrderStatusDelivered,
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
	}
	if len(next) != len(want) {
		t.Fatalf("expected %d targets, got %v", len(want), next)
	}
	for i, code := range want {
		if next[i] != code {
			t.Fatalf("expected %v at position %d, got %v", code, i, next[i])
		}
	}
}

func TestRegistrySeedRowsMatchCatalog(t *testing.T) {
	registry := NewRegistry()
	rows := registry.CatalogRows()
	if len(rows) != len(registry.Catalog()) {
		t.Fatalf("catalog row count mismatch")
	}
	edges := registry.TransitionRows()
	for _, edge := range edges {
		if err := registry.IsValidTransition(edge.FromCode, edge.ToCode); err != nil {
			t.Fatalf("seed edge %s -> %s not present in graph: %v", edge.FromCode, edge.ToCode, err)
		}
	}
}
