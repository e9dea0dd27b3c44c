package keyimagestore

import (
	"testing"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

func TestKeyImageStore(t *testing.T) {
	store := New()
	spent := externalapi.KeyImage{2, 1}
	unspent := externalapi.KeyImage{2, 2}

	err := store.PersistAcceptedBlock(&externalapi.AcceptedBlock{KeyImages: []externalapi.KeyImage{spent}}, nil)
	if err != nil {
		t.Fatalf("PersistAcceptedBlock: %+v", err)
	}

	isSpent, err := store.IsSpent(spent)
	if err != nil {
		t.Fatalf("IsSpent: %+v", err)
	}
	if !isSpent {
		t.Fatalf("expected %s to be spent", spent)
	}

	isSpent, err = store.IsSpent(unspent)
	if err != nil {
		t.Fatalf("IsSpent: %+v", err)
	}
	if isSpent {
		t.Fatalf("expected %s to be unspent", unspent)
	}

	if store.Count() != 1 {
		t.Fatalf("expected one spent key image, got %d", store.Count())
	}
}
