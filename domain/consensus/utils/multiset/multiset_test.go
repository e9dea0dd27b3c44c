package multiset

import (
	"testing"
)

func TestMultisetOrderIndependence(t *testing.T) {
	first := New()
	first.Add([]byte("a"))
	first.Add([]byte("b"))

	second := New()
	second.Add([]byte("b"))
	second.Add([]byte("a"))

	if !first.Hash().Equal(second.Hash()) {
		t.Fatalf("multiset hash depends on insertion order")
	}
}

func TestMultisetRemoveAndClone(t *testing.T) {
	empty := New().Hash()

	ms := New()
	ms.Add([]byte("key image"))
	clone := ms.Clone()
	ms.Remove([]byte("key image"))

	if !ms.Hash().Equal(empty) {
		t.Fatalf("adding then removing an element did not restore the empty hash")
	}
	if clone.Hash().Equal(empty) {
		t.Fatalf("clone was affected by a removal on the original")
	}
}

func TestMultisetSerialization(t *testing.T) {
	ms := New()
	ms.Add([]byte("one"))
	ms.Add([]byte("two"))

	deserialized, err := FromBytes(ms.Serialize())
	if err != nil {
		t.Fatalf("FromBytes: %+v", err)
	}
	if !deserialized.Hash().Equal(ms.Hash()) {
		t.Fatalf("deserialized multiset hash mismatch")
	}

	_, err = FromBytes([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("FromBytes accepted a short input")
	}
}
