package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendinglab/vending-machine/internal/auth"
	"github.com/vendinglab/vending-machine/internal/users"
)

type AuthHandler struct {
	Users  *users.Service
	Issuer *auth.TokenIssuer
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/login", h.login)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.Issuer.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResp{Token: token})
}
