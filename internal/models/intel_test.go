package models

import (
	"testing"
	"time"
)

func TestIntelExpiresAt(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		typ    IntelType
		preset ValidityPreset
		want   time.Duration
	}{
		{IntelTypeHeadsUp, "", 8 * time.Hour},
		{IntelTypeHeadsUp, PresetToday, 8 * time.Hour},
		{IntelTypeDeal, PresetToday, 24 * time.Hour},
		{IntelTypeDeal, PresetTomorrow, 36 * time.Hour},
		{IntelTypeDeal, PresetWeekend, 48 * time.Hour},
		{IntelTypeDeal, Preset48H, 48 * time.Hour},
		{IntelTypeDeal, "UNKNOWN", 24 * time.Hour},
	}
	for _, tc := range testCases {
		got := IntelExpiresAt(tc.typ, tc.preset, created)
		if want := created.Add(tc.want); !got.Equal(want) {
			t.Fatalf("IntelExpiresAt(%s, %s) = %v, want %v", tc.typ, tc.preset, got, want)
		}
	}
}

func TestNewIntelPost(t *testing.T) {
	hint := "MALL"
	badHint := "WARUNG"
	deal := &DealMeta{ValidityPreset: PresetToday, PlaceHint: &hint}
	headsUp := &HeadsUpMeta{HeadsUpType: "RAME"}

	testCases := []struct {
		name    string
		typ     IntelType
		deal    *DealMeta
		headsUp *HeadsUpMeta
		wantErr error
	}{
		{"deal ok", IntelTypeDeal, deal, nil, nil},
		{"headsup ok", IntelTypeHeadsUp, nil, headsUp, nil},
		{"deal missing meta", IntelTypeDeal, nil, nil, ErrMetaMismatch},
		{"deal with headsup meta", IntelTypeDeal, deal, headsUp, ErrMetaMismatch},
		{"headsup missing meta", IntelTypeHeadsUp, nil, nil, ErrMetaMismatch},
		{"headsup with deal meta", IntelTypeHeadsUp, deal, headsUp, ErrMetaMismatch},
		{"bad place hint", IntelTypeDeal, &DealMeta{ValidityPreset: PresetToday, PlaceHint: &badHint}, nil, ErrMetaMismatch},
		{"bad headsup type", IntelTypeHeadsUp, nil, &HeadsUpMeta{HeadsUpType: "SEPI"}, ErrMetaMismatch},
		{"bad type", IntelType("GOSSIP"), deal, nil, ErrMetaMismatch},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewIntelPost(tc.typ, tc.deal, tc.headsUp)
			if err != tc.wantErr {
				t.Fatalf("NewIntelPost() error = %v, want %v", err, tc.wantErr)
			}
			if err == nil && p.Status != IntelStatusActive {
				t.Fatalf("NewIntelPost() status = %s, want %s", p.Status, IntelStatusActive)
			}
		})
	}
}

func TestPostEditable(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := Post{CreatedAt: created}
	if !p.Editable(created.Add(14 * time.Minute)) {
		t.Fatal("post should be editable inside the window")
	}
	if p.Editable(created.Add(15 * time.Minute)) {
		t.Fatal("post should not be editable at the window boundary")
	}
}
