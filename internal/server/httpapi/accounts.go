package httpapi

import (
	"net/http"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountList(list))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.accounts.GetAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(account))
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toRegistration(callerFrom(r.Context())))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.accounts.UpdateAccount(r.Context(), callerFrom(r.Context()).ID, req.Username, req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistration(account))
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var form passwordForm
	if err := s.decodeForm(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.UpdatePassword(r.Context(), callerFrom(r.Context()).ID, form.OldPassword, form.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DeleteAccount(r.Context(), callerFrom(r.Context()).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
