package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	// SHA256 of empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestShortHex(t *testing.T) {
	fullHash := SHA256Hex("device-1234")

	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"4 chars", "device-1234", 4, fullHash[:4]},
		{"12 chars", "device-1234", 12, fullHash[:12]},
		{"full hash if n too large", "device-1234", 100, fullHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortHex(tt.input, tt.n)
			if got != tt.want {
				t.Errorf("ShortHex(%q, %d) = %s, want %s", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestIteratedSHA256(t *testing.T) {
	// 1 iteration should equal a single SHA256
	if IteratedSHA256("abc", 1) != SHA256Hex("abc") {
		t.Error("1 iteration should equal plain SHA256")
	}

	// More iterations must produce a different digest
	if IteratedSHA256("abc", 2) == IteratedSHA256("abc", 1) {
		t.Error("2 iterations should differ from 1")
	}
}

func TestAnonymousViewerID_Stable(t *testing.T) {
	a := AnonymousViewerID("3c6e0b8a-9c15-4ae0-9bdc-1f51a1b2c3d4")
	b := AnonymousViewerID("3c6e0b8a-9c15-4ae0-9bdc-1f51a1b2c3d4")
	if a != b {
		t.Error("same device UUID must derive the same viewer ID")
	}
	if len(a) != 64 {
		t.Errorf("viewer ID length = %d, want 64", len(a))
	}

	c := AnonymousViewerID("another-device")
	if a == c {
		t.Error("different devices must not collide")
	}
}
