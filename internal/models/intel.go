package models

import "time"

type IntelType string

const (
	IntelTypeDeal    IntelType = "DEAL"
	IntelTypeHeadsUp IntelType = "HEADSUP"
)

type IntelStatus string

const (
	IntelStatusActive IntelStatus = "ACTIVE"
	IntelStatusHidden IntelStatus = "HIDDEN"
)

const MaxIntelLen = 160

type ValidityPreset string

const (
	PresetToday    ValidityPreset = "TODAY"
	PresetTomorrow ValidityPreset = "TOMORROW"
	PresetWeekend  ValidityPreset = "WEEKEND"
	Preset48H      ValidityPreset = "48H"
)

var PlaceHints = []string{"MALL", "CAFE", "RESTO", "MINIMARKET", "CAMPUS", "OFFICE", "OTHER"}

type HeadsUpType string

var HeadsUpTypes = []HeadsUpType{"RAME", "ANTRI", "TUTUP", "PARKIR_SUSAH", "BISING"}

// DealMeta carries the payload specific to the DEAL variant.
type DealMeta struct {
	ValidityPreset ValidityPreset `db:"deal_validity" json:"validity_preset"`
	PlaceHint      *string        `db:"deal_place_hint" json:"place_hint,omitempty"`
	SeenDirectly   bool           `db:"deal_seen_directly" json:"seen_directly"`
}

// HeadsUpMeta carries the payload specific to the HEADSUP variant.
type HeadsUpMeta struct {
	HeadsUpType HeadsUpType `db:"headsup_type" json:"heads_up_type"`
}

// IntelMetrics are fire-and-forget aggregate counters. Unlike post likes
// there is no per-identity edge behind them, so nothing prevents a client
// from double counting; that trade-off is deliberate.
type IntelMetrics struct {
	Saves           int `json:"saves"`
	DirectionClicks int `json:"direction_clicks"`
	Ack             int `json:"ack"`
	Updates         int `json:"updates"`
	Reports         int `json:"reports"`
}

// IntelPost is a tagged union over the Deal and HeadsUp variants. Exactly
// one of DealMeta/HeadsUpMeta is populated, matching Type; NewIntelPost is
// the only sanctioned way to build one.
type IntelPost struct {
	ID        string       `json:"intel_id"`
	AnonID    string       `json:"anon_id"`
	Type      IntelType    `json:"type"`
	Content   string       `json:"content"`
	City      string       `json:"city"`
	Area      *string      `json:"area,omitempty"`
	Lat       *float64     `json:"-"`
	Long      *float64     `json:"-"`
	Metrics   IntelMetrics `json:"metrics"`
	DealMeta  *DealMeta    `json:"deal_meta,omitempty"`
	HeadsUp   *HeadsUpMeta `json:"headsup_meta,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	Status    IntelStatus  `json:"-"`
}

func (p *IntelPost) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}

func (p *IntelPost) Editable(now time.Time) bool {
	return now.Sub(p.CreatedAt) < EditWindow
}

// NewIntelPost checks the variant payload exhaustively at construction
// time, replacing the schema-level conditional requirements of the old
// service.
func NewIntelPost(typ IntelType, deal *DealMeta, headsUp *HeadsUpMeta) (IntelPost, error) {
	switch typ {
	case IntelTypeDeal:
		if deal == nil || headsUp != nil {
			return IntelPost{}, ErrMetaMismatch
		}
		if deal.PlaceHint != nil && !contains(PlaceHints, *deal.PlaceHint) {
			return IntelPost{}, ErrMetaMismatch
		}
	case IntelTypeHeadsUp:
		if headsUp == nil || deal != nil {
			return IntelPost{}, ErrMetaMismatch
		}
		valid := false
		for _, t := range HeadsUpTypes {
			if headsUp.HeadsUpType == t {
				valid = true
				break
			}
		}
		if !valid {
			return IntelPost{}, ErrMetaMismatch
		}
	default:
		return IntelPost{}, ErrMetaMismatch
	}
	return IntelPost{
		Type:     typ,
		Status:   IntelStatusActive,
		DealMeta: deal,
		HeadsUp:  headsUp,
	}, nil
}

// IntelExpiresAt computes the deterministic expiry for a variant.
// HeadsUp alerts always live 8 hours. Deals live by preset: TODAY 24h,
// TOMORROW 36h, WEEKEND and 48H both cap at 48h, anything unrecognized
// falls back to 24h.
func IntelExpiresAt(typ IntelType, preset ValidityPreset, created time.Time) time.Time {
	if typ == IntelTypeHeadsUp {
		return created.Add(8 * time.Hour)
	}
	switch preset {
	case PresetToday:
		return created.Add(24 * time.Hour)
	case PresetTomorrow:
		return created.Add(36 * time.Hour)
	case PresetWeekend, Preset48H:
		return created.Add(48 * time.Hour)
	default:
		return created.Add(24 * time.Hour)
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
