package collection

import (
	"github.com/colefleming/mtg-binder/internal/models"
)

// Reconcile annotates externally fetched candidate printings with ownership
// data from the ledger. Candidates not present in the ledger are annotated as
// unowned with quantity zero. The function is pure: it never mutates the
// ledger or the candidates, and calling it twice on the same inputs yields
// identical output.
func Reconcile(candidates []models.Card, ledger *Ledger) []models.AnnotatedCard {
	annotated := make([]models.AnnotatedCard, len(candidates))
	for i, c := range candidates {
		ac := models.AnnotatedCard{Card: c}
		if rec, ok := ledger.Get(c.Identity()); ok {
			ac.Owned = rec.Owned
			ac.Quantity = rec.Quantity
			ac.StorageLocationID = rec.StorageLocationID
		}
		annotated[i] = ac
	}
	return annotated
}
