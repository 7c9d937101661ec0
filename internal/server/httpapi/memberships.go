package httpapi

import (
	"net/http"
)

func (s *Server) handleListChatAccounts(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.chats.ListChatAccounts(r.Context(), chatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountList(list))
}

// handleAddMembership answers 201 for a new membership and 200 when it
// already existed.
func (s *Server) handleAddMembership(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req membershipRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	m, created, err := s.chats.AddMembership(r.Context(), chatID, req.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, membershipResponse{ChatID: m.ChatID, AccountID: m.AccountID})
}

func (s *Server) handleDeleteMembership(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	accountID, err := pathID(r, "account_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.chats.DeleteMembership(r.Context(), chatID, accountID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
