package models

import "time"

const (
	// BanThreshold is the distinct-reporter count at which an identity is
	// banned. The flag is set on the first crossing and never unset.
	BanThreshold = 5
	// IntelHideThreshold is the per-item report count at which an intel
	// post transitions to HIDDEN.
	IntelHideThreshold = 3
)

// Warning is one entry of the append-only log on a BanRecord.
type Warning struct {
	Reason     ReportReason `db:"reason" json:"reason"`
	Timestamp  time.Time    `db:"created_at" json:"timestamp"`
	TargetType TargetType   `db:"target_type" json:"target_type"`
}

// BanRecord tracks moderation pressure on one identity. ReportCount only
// grows, Warnings are append-only and IsBanned is terminal.
type BanRecord struct {
	AnonID      string     `json:"anon_id"`
	ReportCount int        `json:"report_count"`
	IsBanned    bool       `json:"is_banned"`
	BannedAt    *time.Time `json:"banned_at,omitempty"`
	Warnings    []Warning  `json:"warnings"`
	CreatedAt   time.Time  `json:"created_at"`
}
