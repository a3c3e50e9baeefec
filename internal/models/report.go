package models

import "time"

type TargetType string

const (
	TargetPost  TargetType = "POST"
	TargetIntel TargetType = "INTEL"
)

type ReportReason string

const (
	ReasonSpam      ReportReason = "spam"
	ReasonHarmful   ReportReason = "harmful"
	ReasonSexuality ReportReason = "sexuality"
	ReasonViolence  ReportReason = "violence"
	ReasonHoax      ReportReason = "hoax"
	ReasonSara      ReportReason = "sara"
)

var ReportReasons = []ReportReason{
	ReasonSpam, ReasonHarmful, ReasonSexuality, ReasonViolence, ReasonHoax, ReasonSara,
}

func ValidReason(r ReportReason) bool {
	for _, v := range ReportReasons {
		if v == r {
			return true
		}
	}
	return false
}

// Report links a reporting identity to a target item. At most one report
// may exist per (target, reporter) pair; the store enforces that.
type Report struct {
	ID           string       `db:"id" json:"report_id"`
	TargetID     string       `db:"target_id" json:"target_id"`
	TargetType   TargetType   `db:"target_type" json:"target_type"`
	ReportedBy   string       `db:"reported_by" json:"reported_by"`
	ReportedUser string       `db:"reported_user" json:"reported_user"`
	Reason       ReportReason `db:"reason" json:"reason"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
