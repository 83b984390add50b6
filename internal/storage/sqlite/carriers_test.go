// ABOUTME: Tests for carrier storage operations
// ABOUTME: Verifies upsert, ordering, state round-trips and validation
package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/carrierfit/internal/models"
)

func TestCarrierSaveAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	mustSaveCarrier(t, store, "acme", "Acme Life", 2, "tx", "CA")

	got, err := store.GetCarrier(ctx, "acme")
	if err != nil {
		t.Fatalf("GetCarrier() error = %v", err)
	}
	if got.Name != "Acme Life" {
		t.Errorf("Name = %v, want Acme Life", got.Name)
	}
	if got.PreferenceRank != 2 {
		t.Errorf("PreferenceRank = %v, want 2", got.PreferenceRank)
	}
	if len(got.States) != 2 || got.States[0] != "TX" || got.States[1] != "CA" {
		t.Errorf("States = %v, want [TX CA]", got.States)
	}
}

func TestCarrierUpsert(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	mustSaveCarrier(t, store, "acme", "Acme Life", 2)
	mustSaveCarrier(t, store, "acme", "Acme Mutual", 1)

	carriers, err := store.ListCarriers(ctx)
	if err != nil {
		t.Fatalf("ListCarriers() error = %v", err)
	}
	if len(carriers) != 1 {
		t.Fatalf("ListCarriers() count = %d, want 1", len(carriers))
	}
	if carriers[0].Name != "Acme Mutual" || carriers[0].PreferenceRank != 1 {
		t.Errorf("carrier = %+v, want updated name and rank", carriers[0])
	}
	if carriers[0].States != nil {
		t.Errorf("States = %v, want nil", carriers[0].States)
	}
}

func TestCarrierListOrdering(t *testing.T) {
	store := newTestStorage(t)

	mustSaveCarrier(t, store, "zen", "Zen Life", 1)
	mustSaveCarrier(t, store, "beta", "Beta Mutual", 2)
	mustSaveCarrier(t, store, "acme", "Acme Life", 2)

	carriers, err := store.ListCarriers(context.Background())
	if err != nil {
		t.Fatalf("ListCarriers() error = %v", err)
	}

	want := []string{"zen", "acme", "beta"}
	if len(carriers) != len(want) {
		t.Fatalf("ListCarriers() count = %d, want %d", len(carriers), len(want))
	}
	for i, id := range want {
		if carriers[i].ID != id {
			t.Errorf("carriers[%d] = %v, want %v", i, carriers[i].ID, id)
		}
	}
}

func TestCarrierSaveValidation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		carrier models.Carrier
	}{
		{"missing id", models.Carrier{Name: "Acme"}},
		{"missing name", models.Carrier{ID: "acme"}},
		{"negative rank", models.Carrier{ID: "acme", Name: "Acme", PreferenceRank: -1}},
		{"bad state", models.Carrier{ID: "acme", Name: "Acme", States: []string{"Texas"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveCarrier(ctx, &tt.carrier)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("SaveCarrier() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestGetCarrierNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetCarrier(context.Background(), "ghost")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetCarrier() error = %v, want ErrNotFound", err)
	}
}
