package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/server/services"
)

type startRegistrationRequest struct {
	Username string    `json:"username"`
	Request  ByteArray `json:"request"`
	Wallet   string    `json:"wallet"`
	Salt     string    `json:"salt"`
}

type startLoginRequest struct {
	Username string    `json:"username"`
	Request  ByteArray `json:"request"`
}

// finishRequest accepts the follow-up under "message" and, for older
// clients, under "key".
type finishRequest struct {
	Message ByteArray `json:"message"`
	Key     ByteArray `json:"key"`
}

func (f finishRequest) followUp() []byte {
	if f.Message != nil {
		return f.Message
	}
	return f.Key
}

type startResponse struct {
	Key      string    `json:"key"`
	Response ByteArray `json:"response"`
}

type registerFinishResponse struct {
	Success bool `json:"success"`
}

type loginFinishResponse struct {
	Wallet      string `json:"wallet"`
	Salt        string `json:"salt"`
	AccessToken string `json:"access_token,omitempty"`
}

type accountResponse struct {
	UserID string `json:"user_id"`
}

func (s *HTTPServer) handleTest(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"test": "test"})
}

func (s *HTTPServer) handleRegisterStart(w http.ResponseWriter, r *http.Request) {
	var req startRegistrationRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.registration.Start(r.Context(), services.RegistrationStart{
		Username: req.Username,
		Message:  req.Request,
		Wallet:   req.Wallet,
		Salt:     req.Salt,
		ClientIP: clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, startResponse{Key: res.Key, Response: res.Message})
}

func (s *HTTPServer) handleRegisterFinish(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.registration.Finish(r.Context(), chi.URLParam(r, "key"), req.followUp()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, registerFinishResponse{Success: true})
}

func (s *HTTPServer) handleLoginStart(w http.ResponseWriter, r *http.Request) {
	var req startLoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.login.Start(r.Context(), services.LoginStart{
		Username: req.Username,
		Message:  req.Request,
		ClientIP: clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, startResponse{Key: res.Key, Response: res.Message})
}

func (s *HTTPServer) handleLoginFinish(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.login.Finish(r.Context(), chi.URLParam(r, "key"), req.followUp())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, loginFinishResponse{
		Wallet:      res.Wallet,
		Salt:        res.Salt,
		AccessToken: res.AccessToken,
	})
}

func (s *HTTPServer) handleAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	s.writeJSON(w, r, http.StatusOK, accountResponse{UserID: userID})
}

// decode reads a JSON body into dst. On failure it writes a 400 response
// and returns false.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeMessage(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.logger.Warn(r.Context(), "bad request body", "path", r.URL.Path, "error", err)
		s.writeError(w, r, common.ErrValidation)
		return false
	}
	return true
}

// clientIP is the peer address. Forwarding headers are client controlled and ignored.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
