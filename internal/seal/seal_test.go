package seal

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, 32)
}

func TestSealOpen(t *testing.T) {
	s, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	token, err := s.Seal("item-1", "option-b")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	got, err := s.Open("item-1", token)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got != "option-b" {
		t.Errorf("Open() = %q, want option-b", got)
	}

	again, _ := s.Seal("item-1", "option-b")
	if again == token {
		t.Error("two seals of the same answer should differ")
	}
}

func TestOpen_Rejects(t *testing.T) {
	s, _ := New(testKey())
	token, _ := s.Seal("item-1", "option-b")

	other, _ := New(bytes.Repeat([]byte{8}, 32))

	flip := byte('A')
	if token[0] == 'A' {
		flip = 'B'
	}
	tampered := string(flip) + token[1:]

	tests := []struct {
		name   string
		sealer *Sealer
		itemID string
		token  string
	}{
		{"other item", s, "item-2", token},
		{"other key", other, "item-1", token},
		{"not base64", s, "item-1", "!!!"},
		{"truncated", s, "item-1", token[:10]},
		{"tampered", s, "item-1", tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.sealer.Open(tt.itemID, tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Open() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewFromHex(t *testing.T) {
	s, err := NewFromHex("")
	if err != nil || s != nil {
		t.Errorf("NewFromHex(\"\") = %v, %v; want nil, nil", s, err)
	}

	if _, err := NewFromHex("zz"); err == nil {
		t.Error("NewFromHex(zz) should fail")
	}
	if _, err := NewFromHex("abcd"); err == nil {
		t.Error("NewFromHex(short key) should fail")
	}

	s, err = NewFromHex(hex.EncodeToString(testKey()))
	if err != nil || s == nil {
		t.Fatalf("NewFromHex(valid) = %v, %v", s, err)
	}
}
