package routes

import (
	"encoding/json"
	"net/http"

	"gitlab.com/bisikapp/bisik/internal/models"
)

// PostReport takes a user report. The response is the same whether the
// report was new or a repeat by the same reporter, and it never reveals
// what enforcement, if any, followed.
func (routes *Routes) PostReport(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		TargetID   string              `json:"target_id"`
		TargetType models.TargetType   `json:"target_type"`
		AnonID     string              `json:"anon_id"`
		Reason     models.ReportReason `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}

	_, err := routes.Moderation.SubmitReport(r.Context(), body.TargetID, body.TargetType, body.AnonID, body.Reason)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, map[string]string{
		"message": "Terima kasih. Kami akan cek konten ini agar Bisik tetap aman.",
	})
	return nil
}
