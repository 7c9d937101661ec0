package httpapi

import (
	"net/http"
)

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	list, err := s.chats.ListChats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatList(list))
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	chat, err := s.chats.CreateChat(r.Context(), req.Name, req.OwnerID, callerFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChat(chat))
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	chat, err := s.chats.GetChat(r.Context(), chatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChat(chat))
}

func (s *Server) handleUpdateChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateChatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	chat, err := s.chats.UpdateChat(r.Context(), chatID, req.Name, req.OwnerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChat(chat))
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chat_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.chats.DeleteChat(r.Context(), chatID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
