package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	httpinfra "creatora-api/internal/infra/http"
	onboardingusecase "creatora-api/internal/usecase/onboarding"
	postsusecase "creatora-api/internal/usecase/posts"
)

type addPostRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleBrand(w http.ResponseWriter, r *http.Request) {
	var req onboardingusecase.BasicDataInput
	if !decodeBody(w, r, &req) {
		return
	}
	profile, err := s.svc.Onboarding.AddBasicData(r.Context(), session(r).Principal, req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, profile)
}

func (s *Server) handleAddPost(w http.ResponseWriter, r *http.Request) {
	var req addPostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	post, err := s.svc.Onboarding.AnalyzeAndSavePost(r.Context(), session(r).Principal, req.URL)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Post analyzed and saved successfully",
		"post":    post,
	})
}

func (s *Server) handleAnalyzeProfile(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Onboarding.AnalyzeProfile(r.Context(), session(r).Principal)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Brand profile created/updated successfully",
		"postsAnalyzed": res.PostsAnalyzed,
		"profile":       res.Profile,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Content.Generate(r.Context(), session(r).Principal)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleVideoScript(w http.ResponseWriter, r *http.Request) {
	script, err := s.svc.Content.VideoScript(r.Context(), session(r).Principal, chi.URLParam(r, "postId"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, script)
}

func (s *Server) handlePostingSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.svc.Content.PostingSchedule(r.Context(), session(r).Principal, chi.URLParam(r, "postId"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleListGenerated(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.svc.Posts.List(r.Context(), session(r).Principal, postsusecase.ListParams{
		Page:    q.Get("page"),
		Limit:   q.Get("limit"),
		Search:  q.Get("search"),
		Sort:    q.Get("sort"),
		OrderBy: q.Get("orderBy"),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetGenerated(w http.ResponseWriter, r *http.Request) {
	post, err := s.svc.Posts.Get(r.Context(), session(r).Principal, chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, post)
}
