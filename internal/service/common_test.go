package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateUnmarshal(t *testing.T) {
	var body struct {
		A *Date `json:"a"`
		B *Date `json:"b"`
		C *Date `json:"c"`
	}
	raw := `{"a":"2026-03-01","b":"2026-03-01T15:04:05+05:30","c":null}`
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := documentDate(body.A); !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("a = %v", got)
	}
	if got := documentDate(body.B); got.Hour() != 9 || got.Minute() != 34 {
		t.Fatalf("b not normalized to UTC: %v", got)
	}
	if optionalDate(body.C) != nil {
		t.Fatal("null date should stay absent")
	}

	var bad struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"01/03/2026"}`), &bad); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestPatchOnly(t *testing.T) {
	p := Patch{"notes": json.RawMessage(`"a"`), "dueDate": json.RawMessage(`null`)}
	if err := p.only("notes", "dueDate"); err != nil {
		t.Fatalf("only: %v", err)
	}
	if err := p.only("notes"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	var notes string
	ok, err := p.decode("notes", &notes)
	if !ok || err != nil || notes != "a" {
		t.Fatalf("decode = %v, %v, %q", ok, err, notes)
	}
	if ok, _ := p.decode("missing", &notes); ok {
		t.Fatal("missing key reported present")
	}
}

func TestActorDefaults(t *testing.T) {
	var a Actor
	if a.auditID() != "system" || a.displayName() != "Someone" {
		t.Fatalf("defaults = %q %q", a.auditID(), a.displayName())
	}
}
