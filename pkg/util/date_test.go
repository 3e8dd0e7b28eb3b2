package util

import (
	"testing"
	"time"
)

func TestParseYYYYMMDD(t *testing.T) {
	got, ok := ParseYYYYMMDD("20241010")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseYYYYMMDDInvalid(t *testing.T) {
	if _, ok := ParseYYYYMMDD("2024-10-10"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseYYYYMMDD(""); ok {
		t.Fatalf("expected parse failure for empty")
	}
}

func TestParseYYYYMMDDDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseYYYYMMDDDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestFormatYYYYMMDD(t *testing.T) {
	got := FormatYYYYMMDD(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC))
	if got != "20240102" {
		t.Fatalf("unexpected %q", got)
	}
}
