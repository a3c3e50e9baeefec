package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gitlab.com/bisikapp/bisik/internal/content"
	"gitlab.com/bisikapp/bisik/internal/engagement"
	"gitlab.com/bisikapp/bisik/internal/feed"
	"gitlab.com/bisikapp/bisik/internal/geo"
	"gitlab.com/bisikapp/bisik/internal/models"
)

func (routes *Routes) IntelRouter(r chi.Router) {
	r.Get("/", AppHandler(routes.GetIntel))
	r.Post("/", AppHandler(routes.CreateIntel))
	r.Put("/{id}", AppHandler(routes.UpdateIntel))
	r.Delete("/{id}", AppHandler(routes.DeleteIntel))
	r.Post("/{id}/action", AppHandler(routes.IntelAction))
}

// GetIntel serves an intel-only feed, either variant or both.
func (routes *Routes) GetIntel(w http.ResponseWriter, r *http.Request) *AppError {
	q := r.URL.Query()

	filter := feed.FilterDeal
	switch q.Get("type") {
	case "HEADSUP":
		filter = feed.FilterHeadsUp
	case "", "ALL":
		filter = feed.FilterAll
	}
	req := feed.Request{
		AnonID: q.Get("anon_id"),
		City:   q.Get("city"),
		Filter: filter,
	}
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	long, longErr := strconv.ParseFloat(q.Get("long"), 64)
	if latErr == nil && longErr == nil {
		req.Viewer = &geo.Point{Lat: lat, Long: long}
	}
	if radius, err := strconv.ParseFloat(q.Get("radius"), 64); err == nil {
		req.RadiusM = radius
	}

	items, err := routes.Feed.Compose(r.Context(), req)
	if err != nil {
		return appError(err)
	}
	if filter == feed.FilterAll {
		// Intel only, even when both variants are requested.
		intel := make([]feed.Item, 0, len(items))
		for _, it := range items {
			if v, ok := it.(*feed.IntelView); ok {
				intel = append(intel, v)
			}
		}
		items = intel
	}
	renderData(w, http.StatusOK, items)
	return nil
}

func (routes *Routes) CreateIntel(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		AnonID  string              `json:"anon_id"`
		Type    models.IntelType    `json:"type"`
		Content string              `json:"content"`
		City    string              `json:"city"`
		Area    *string             `json:"area"`
		Lat     *float64            `json:"lat"`
		Long    *float64            `json:"long"`
		Deal    *models.DealMeta    `json:"deal_meta"`
		HeadsUp *models.HeadsUpMeta `json:"headsup_meta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}

	p, err := routes.Content.CreateIntel(r.Context(), content.CreateIntelInput{
		AnonID:  body.AnonID,
		Type:    body.Type,
		Content: body.Content,
		City:    body.City,
		Area:    body.Area,
		Lat:     body.Lat,
		Long:    body.Long,
		Deal:    body.Deal,
		HeadsUp: body.HeadsUp,
	})
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusCreated, p)
	return nil
}

func (routes *Routes) UpdateIntel(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		AnonID  string `json:"anon_id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}
	p, err := routes.Content.EditIntel(r.Context(), chi.URLParam(r, "id"), body.AnonID, body.Content)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, p)
	return nil
}

func (routes *Routes) DeleteIntel(w http.ResponseWriter, r *http.Request) *AppError {
	anonID := r.URL.Query().Get("anon_id")
	if anonID == "" {
		return appError(models.ErrMissingFields)
	}
	if err := routes.Content.DeleteIntel(r.Context(), chi.URLParam(r, "id"), anonID); err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, map[string]string{"message": "Info dihapus."})
	return nil
}

// IntelAction bumps one of the fire-and-forget counters. The response
// carries the fresh counters so the client can render without refetching.
func (routes *Routes) IntelAction(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		Action engagement.Action `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}
	p, err := routes.Engagement.IntelAction(r.Context(), chi.URLParam(r, "id"), body.Action)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, p.Metrics)
	return nil
}
