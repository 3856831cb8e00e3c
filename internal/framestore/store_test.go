package framestore

import (
	"image"
	"testing"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

func frame(n uint64) *types.Frame {
	return &types.Frame{Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), Number: n}
}

func TestPublishReplacesPrevious(t *testing.T) {
	s := New()

	s.Publish(KeyCrowd, frame(1))
	s.Publish(KeyCrowd, frame(2))

	got := s.Get(KeyCrowd)
	if got == nil || got.Number != 2 {
		t.Fatalf("expected frame 2, got %+v", got)
	}
}

func TestGetEmptyStore(t *testing.T) {
	s := New()
	if got := s.Get(KeyFinal); got != nil {
		t.Fatalf("expected nil from empty store, got %+v", got)
	}
	if got := s.GetWithFallback(ViewerFallback...); got != nil {
		t.Fatalf("expected nil fallback from empty store, got %+v", got)
	}
}

func TestViewerFallbackOrder(t *testing.T) {
	cases := []struct {
		name    string
		publish []Key
		want    Key
	}{
		{"final wins over all", []Key{KeyCrowd, KeyWeapon, KeyFinal}, KeyFinal},
		{"weapon when no final", []Key{KeyCrowd, KeyWeapon}, KeyWeapon},
		{"crowd as last resort", []Key{KeyCrowd}, KeyCrowd},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			for _, key := range tc.publish {
				s.Publish(key, frame(uint64(key)+1))
			}

			got := s.GetWithFallback(ViewerFallback...)
			if got == nil || got.Number != uint64(tc.want)+1 {
				t.Fatalf("expected frame for key %v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	cases := []struct {
		name string
		want Key
		ok   bool
	}{
		{"crowd", KeyCrowd, true},
		{"weapon", KeyWeapon, true},
		{"final", KeyFinal, true},
		{"violence", KeyFinal, true},
		{"bogus", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		key, ok := ParseKey(tc.name)
		if ok != tc.ok || (ok && key != tc.want) {
			t.Fatalf("ParseKey(%q) = %v, %v; want %v, %v", tc.name, key, ok, tc.want, tc.ok)
		}
	}
}

func TestKeyString(t *testing.T) {
	if KeyCrowd.String() != "crowd" || KeyWeapon.String() != "weapon" || KeyFinal.String() != "final" {
		t.Fatalf("unexpected key names: %q %q %q", KeyCrowd, KeyWeapon, KeyFinal)
	}
}
