package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
)

// ListConversations returns every conversation, most recently active first.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.repo.Chat().ListAllChatMessages(r.Context())
	if err != nil {
		response.Error(w, r, "can't list chat messages", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityConversationsToDto(entity.GroupConversations(msgs)))
}

func (s *Server) ReplyChat(w http.ResponseWriter, r *http.Request) {
	req := &dto.ChatReply{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "", err)
		return
	}
	m, err := dto.ConvertChatReplyToEntity(req, chi.URLParam(r, "deviceId"), s.now())
	if err != nil {
		response.Error(w, r, "", err)
		return
	}
	if err := s.repo.Chat().AddChatMessage(r.Context(), m); err != nil {
		response.Error(w, r, "can't add chat reply", err)
		return
	}
	response.JSON(w, r, http.StatusCreated, dto.ConvertEntityChatMessageToDto(m))
}

func (s *Server) MarkChatRead(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Chat().MarkConversationRead(r.Context(), chi.URLParam(r, "deviceId")); err != nil {
		response.Error(w, r, "can't mark conversation read", err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Message{Message: "conversation marked read"})
}

func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Chat().DeleteConversation(r.Context(), chi.URLParam(r, "deviceId")); err != nil {
		response.Error(w, r, "can't delete conversation", err)
		return
	}
	response.JSON(w, r, http.StatusOK, response.Message{Message: "conversation deleted"})
}
