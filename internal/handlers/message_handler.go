package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/services"
)

const defaultPageSize = 50

type MessageHandler struct {
	messages  services.MessageService
	maxLength int
	logger    *zap.Logger
}

func NewMessageHandler(messages services.MessageService, maxLength int, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, maxLength: maxLength, logger: logger.Named("messages")}
}

// @Summary      Send an anonymous message
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        username  path      string                     true  "Recipient"
// @Param        body      body      models.SendMessageRequest  true  "Message"
// @Success      201       {object}  handlers.Response
// @Failure      400       {object}  handlers.Response
// @Failure      403       {object}  handlers.Response  "reason: not_accepting_messages"
// @Failure      404       {object}  handlers.Response
// @Failure      429       {object}  handlers.Response
// @Router       /u/{username}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, Response{Message: "content is required"})
		return
	}
	if h.maxLength > 0 && utf8.RuneCountInString(req.Content) > h.maxLength {
		c.JSON(http.StatusBadRequest, Response{Message: "content is too long"})
		return
	}

	if _, err := h.messages.Accept(c.Request.Context(), c.Param("username"), req.Content); err != nil {
		respondError(c, h.logger, err)
		return
	}
	// the sender gets no message id back
	respondOK(c, http.StatusCreated, "Message sent", nil)
}

// @Summary      List my messages
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (1-100)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  handlers.Response{data=[]models.Message}
// @Failure      401     {object}  handlers.Response
// @Router       /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var q models.ListMessagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultPageSize
	}

	msgs, err := h.messages.List(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", msgs)
}

// @Summary      Delete a message
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  handlers.Response
// @Failure      400  {object}  handlers.Response
// @Failure      404  {object}  handlers.Response
// @Router       /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid message id"})
		return
	}

	if err := h.messages.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Message deleted", nil)
}

// @Summary      Get message acceptance
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.Response
// @Router       /messages/accepting [get]
func (h *MessageHandler) GetAccepting(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	accepting, err := h.messages.IsAccepting(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"accept_messages": accepting})
}

// @Summary      Toggle message acceptance
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.AcceptMessagesRequest  true  "New state"
// @Success      200   {object}  handlers.Response
// @Failure      400   {object}  handlers.Response
// @Router       /messages/accepting [put]
func (h *MessageHandler) SetAccepting(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AcceptMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	accept := *req.AcceptMessages
	if err := h.messages.SetAccepting(c.Request.Context(), userID, accept); err != nil {
		respondError(c, h.logger, err)
		return
	}
	msg := "Messages are now accepted"
	if !accept {
		msg = "Messages are now refused"
	}
	respondOK(c, http.StatusOK, msg, gin.H{"accept_messages": accept})
}
