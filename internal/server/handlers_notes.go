package server

import (
	"net/http"

	"github.com/Prabisha01/de/internal/notes"
	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	var request notes.CreateInput
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	note, err := h.notes.Create(c.Request.Context(), actorFromContext(c), request)
	if err != nil {
		h.respondError(c, "notes.create", err)
		return
	}
	respondData(c, http.StatusCreated, note)
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	list, err := h.notes.ListByBoard(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		h.respondError(c, "notes.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	var request notes.UpdateInput
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	note, err := h.notes.Update(c.Request.Context(), actorFromContext(c), c.Param("noteId"), request)
	if err != nil {
		h.respondError(c, "notes.update", err)
		return
	}
	respondData(c, http.StatusOK, note)
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	note, err := h.notes.Delete(c.Request.Context(), actorFromContext(c), c.Param("noteId"))
	if err != nil {
		h.respondError(c, "notes.delete", err)
		return
	}
	respondMessage(c, http.StatusOK, "Note deleted successfully", gin.H{"id": note.ID})
}
