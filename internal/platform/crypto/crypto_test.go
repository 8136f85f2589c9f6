package crypto

import (
	"strings"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpenRoundTrip(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := c.SealString("123.456.789-09", "emp-1")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(string(sealed), "123.456") {
		t.Fatal("expected ciphertext, found plaintext")
	}
	plain, err := c.OpenString(sealed, "emp-1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "123.456.789-09" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestOpenRejectsOtherRow(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := c.SealString("12345678909", "emp-1")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := c.OpenString(sealed, "emp-2"); err == nil {
		t.Fatal("expected authentication failure for a different row")
	}
}

func TestDisabledCipherPassesThrough(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected disabled cipher")
	}
	sealed, _ := c.SealString("12345678909", "emp-1")
	if string(sealed) != "12345678909" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected key length error")
	}
}

func TestMaskDocument(t *testing.T) {
	tests := map[string]string{
		"123.456.789-09": "*********09",
		"7":              "*",
		"":               "",
	}
	for in, want := range tests {
		if got := MaskDocument(in); got != want {
			t.Fatalf("MaskDocument(%q) = %q, want %q", in, got, want)
		}
	}
}
