package collection

import (
	"reflect"
	"testing"

	"github.com/colefleming/mtg-binder/internal/models"
)

func TestReconcileAnnotatesOwnership(t *testing.T) {
	l := testLedger(t)
	l.AddCopy(bolt, AddOptions{StorageLocationID: "box_1"})
	l.AddCopy(bolt, AddOptions{})

	candidates := []models.Card{
		{Name: "Lightning Bolt", SetCode: "M21", CollectorNumber: "162", PriceUSD: 0.75, PriceKnown: true},
		{Name: "Shock", SetCode: "M21", CollectorNumber: "159"},
	}

	annotated := Reconcile(candidates, l)
	if len(annotated) != 2 {
		t.Fatalf("expected 2 annotated cards, got %d", len(annotated))
	}
	if !annotated[0].Owned || annotated[0].Quantity != 2 || annotated[0].StorageLocationID != "box_1" {
		t.Errorf("owned candidate not annotated: %+v", annotated[0])
	}
	if annotated[0].PriceUSD != 0.75 {
		t.Errorf("candidate price must not be touched, got %v", annotated[0].PriceUSD)
	}
	if annotated[1].Owned || annotated[1].Quantity != 0 || annotated[1].StorageLocationID != "" {
		t.Errorf("unowned candidate should carry zero values: %+v", annotated[1])
	}
}

func TestReconcileMatchesFullIdentity(t *testing.T) {
	l := testLedger(t)
	l.AddCopy(bolt, AddOptions{})

	candidates := []models.Card{
		// Same name, different printing or finish: no match.
		{Name: "Lightning Bolt", SetCode: "STA", CollectorNumber: "42"},
		{Name: "Lightning Bolt", SetCode: "M21", CollectorNumber: "162", Foil: true},
	}
	for _, ac := range Reconcile(candidates, l) {
		if ac.Owned {
			t.Errorf("candidate %v should not match a different printing", ac.Card.Identity())
		}
	}
}

func TestReconcileIsPureAndIdempotent(t *testing.T) {
	l := testLedger(t)
	l.AddCopy(bolt, AddOptions{})

	candidates := []models.Card{
		{Name: "Lightning Bolt", SetCode: "M21", CollectorNumber: "162"},
	}
	before := candidates[0]

	first := Reconcile(candidates, l)
	second := Reconcile(candidates, l)

	if !reflect.DeepEqual(first, second) {
		t.Error("reconciling twice must yield identical output")
	}
	if candidates[0] != before {
		t.Error("reconcile must not mutate the candidates")
	}
	if rec, _ := l.Get(bolt); rec.Quantity != 1 {
		t.Error("reconcile must not mutate the ledger")
	}
}
