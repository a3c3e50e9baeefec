package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gitlab.com/bisikapp/bisik/internal/content"
	"gitlab.com/bisikapp/bisik/internal/feed"
	"gitlab.com/bisikapp/bisik/internal/geo"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/store"
)

func (routes *Routes) PostsRouter(r chi.Router) {
	r.Get("/", AppHandler(routes.GetFeed))
	r.Post("/", AppHandler(routes.CreatePost))
	r.Get("/me", AppHandler(routes.GetMyPosts))
	r.Put("/{id}", AppHandler(routes.UpdatePost))
	r.Delete("/{id}", AppHandler(routes.DeletePost))
	r.Post("/{id}/toggle_like", AppHandler(routes.ToggleLike))
	r.Get("/{id}/comments", AppHandler(routes.GetComments))
	r.Post("/{id}/comments", AppHandler(routes.CreateComment))
}

// GetFeed serves the mixed home timeline. The viewer's coordinates, when
// present, switch the scope from city to radius; they are used for the
// query and the distance buckets, then discarded.
func (routes *Routes) GetFeed(w http.ResponseWriter, r *http.Request) *AppError {
	q := r.URL.Query()

	req := feed.Request{
		AnonID:      q.Get("anon_id"),
		City:        q.Get("city"),
		Filter:      feed.Filter(q.Get("filter")),
		Institution: q.Get("institution"),
		Topic:       q.Get("topic"),
	}
	if q.Get("sort") == "popular" {
		req.Sort = store.SortPopular
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
	renderData(w, http.StatusOK, items)
	return nil
}

func (routes *Routes) CreatePost(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		AnonID      string   `json:"anon_id"`
		Content     string   `json:"content"`
		City        string   `json:"city"`
		Institution *string  `json:"institution"`
		Topic       *string  `json:"topic"`
		Gender      *string  `json:"gender"`
		Occupation  *string  `json:"occupation"`
		Lat         *float64 `json:"lat"`
		Long        *float64 `json:"long"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}

	p, err := routes.Content.CreatePost(r.Context(), content.CreatePostInput{
		AnonID:      body.AnonID,
		Content:     body.Content,
		City:        body.City,
		Institution: body.Institution,
		Topic:       body.Topic,
		Gender:      body.Gender,
		Occupation:  body.Occupation,
		Lat:         body.Lat,
		Long:        body.Long,
	})
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusCreated, p)
	return nil
}

func (routes *Routes) GetMyPosts(w http.ResponseWriter, r *http.Request) *AppError {
	anonID := r.URL.Query().Get("anon_id")
	if anonID == "" {
		return appError(models.ErrMissingFields)
	}
	posts, err := routes.Content.MyPosts(r.Context(), anonID)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, posts)
	return nil
}

func (routes *Routes) UpdatePost(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		AnonID  string `json:"anon_id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}
	p, err := routes.Content.EditPost(r.Context(), chi.URLParam(r, "id"), body.AnonID, body.Content)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, p)
	return nil
}

func (routes *Routes) DeletePost(w http.ResponseWriter, r *http.Request) *AppError {
	anonID := r.URL.Query().Get("anon_id")
	if anonID == "" {
		return appError(models.ErrMissingFields)
	}
	if err := routes.Content.DeletePost(r.Context(), chi.URLParam(r, "id"), anonID); err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, map[string]string{"message": "Post dihapus."})
	return nil
}

func (routes *Routes) ToggleLike(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		AnonID string `json:"anon_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}
	likes, hasLiked, err := routes.Engagement.ToggleLike(r.Context(), chi.URLParam(r, "id"), body.AnonID)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, map[string]interface{}{
		"likes":     likes,
		"has_liked": hasLiked,
	})
	return nil
}

func (routes *Routes) GetComments(w http.ResponseWriter, r *http.Request) *AppError {
	comments, err := routes.Content.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusOK, comments)
	return nil
}

func (routes *Routes) CreateComment(w http.ResponseWriter, r *http.Request) *AppError {
	var body struct {
		AnonID  string `json:"anon_id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return appError(models.ErrMissingFields)
	}
	c, err := routes.Content.CreateComment(r.Context(), chi.URLParam(r, "id"), body.AnonID, body.Content)
	if err != nil {
		return appError(err)
	}
	renderData(w, http.StatusCreated, c)
	return nil
}
