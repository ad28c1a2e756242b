package httpapi

import (
	"net/http"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/policy"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

type signUpRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	SSN      *string `json:"ssn"`
}

func (a *API) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.Name == nil || req.Email == nil || req.Password == nil ||
		req.SSN == nil || !policy.ValidSSN(*req.SSN) {
		a.respondError(w, r, errUnprocessable)
		return
	}

	if err := a.identity.SignUp(r.Context(), *req.Name, *req.Email, *req.Password, *req.SSN); err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Success"})
}

type logInRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// logInResponse keeps the original wire shape: the token under
// "Authorization" next to the session record it identifies.
type logInResponse struct {
	Authorization string       `json:"Authorization"`
	SessionItems  session.Info `json:"Session Items"`
}

func (a *API) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.Password == nil || (req.Username == nil && req.Email == nil) {
		a.respondError(w, r, errUnprocessable)
		return
	}

	// Administrators present a username, users an email.
	kind, handle := catalog.HandleEmail, ""
	if req.Username != nil {
		kind, handle = catalog.HandleUsername, *req.Username
	} else {
		handle = *req.Email
	}

	sess, err := a.identity.LogIn(r.Context(), kind, handle, *req.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, logInResponse{
		Authorization: sess.Token,
		SessionItems:  a.directory.Snapshot()[sess.Token],
	})
}

func (a *API) handleLogOut(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	a.identity.LogOut(sess.Token)
	a.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Success"})
}

func (a *API) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := a.identity.DeleteAccount(r.Context(), sess); err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Success"})
}

func (a *API) handleSessionDump(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, r, http.StatusOK, a.directory.Snapshot())
}
