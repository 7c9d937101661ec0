package httpapi

import (
	"net/http"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.chats.ListMessages(r.Context(), chatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageList(list))
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createMessageRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.chats.CreateMessage(r.Context(), chatID, req.Text, req.AccountID, callerFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessage(msg))
}

func (s *Server) handleUpdateMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	messageID, err := pathID(r, "message_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateMessageRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.chats.UpdateMessage(r.Context(), chatID, messageID, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessage(msg))
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	messageID, err := pathID(r, "message_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.chats.DeleteMessage(r.Context(), chatID, messageID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
