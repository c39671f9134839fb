package httpapi

import (
	"net/http"
	"time"

	httpinfra "creatora-api/internal/infra/http"
	authusecase "creatora-api/internal/usecase/auth"
	profileusecase "creatora-api/internal/usecase/profile"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Success     bool                   `json:"success"`
	AccessToken string                 `json:"accessToken"`
	User        authusecase.PublicUser `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpinfra.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.sameSite(),
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpinfra.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.sameSite(),
	})
}

// SameSite=None браузеры принимают только вместе с Secure.
func (s *Server) sameSite() http.SameSite {
	if s.cookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (s *Server) writeAuth(w http.ResponseWriter, status int, res authusecase.Result) {
	s.setAuthCookie(w, res.AccessToken, res.ExpiresAt)
	httpinfra.WriteJSON(w, status, authResponse{Success: true, AccessToken: res.AccessToken, User: res.User})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.Auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeAuth(w, http.StatusCreated, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httpinfra.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	res, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeAuth(w, http.StatusOK, res)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Auth.Me(r.Context(), session(r).Principal)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Auth.Refresh(r.Context(), session(r).Principal)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeAuth(w, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	if err := s.svc.Auth.Logout(r.Context(), sess.TokenID, sess.ExpiresAt); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.clearAuthCookie(w)
	httpinfra.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req authusecase.UpdatePasswordInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.Auth.UpdatePassword(r.Context(), session(r).Principal, req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password updated successfully"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "OTP sent successfully"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authusecase.ResetPasswordInput
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.Auth.ResetPassword(r.Context(), req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Password reset successfully"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := session(r)
	if err := s.svc.Auth.DeleteAccount(r.Context(), sess.Principal, req.Password); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.svc.Auth.Logout(r.Context(), sess.TokenID, sess.ExpiresAt); err != nil {
		s.log.Warn().Err(err).Msg("api: токен удалённого аккаунта не отозван")
	}
	s.clearAuthCookie(w)
	httpinfra.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Account deleted successfully"})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileusecase.UpdateInput
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.svc.Profile.Update(r.Context(), session(r).Principal, req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}
