package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Prabisha01/de/internal/boards"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createBoardRequestPayload struct {
	BoardName string `json:"boardName"`
}

type updateBoardRequestPayload struct {
	Content  *string                `json:"content"`
	Elements *[]boards.ElementInput `json:"elements"`
}

// upsertElementRequestPayload accepts the element either wrapped as {"element": {...}} or inline.
type upsertElementRequestPayload struct {
	Element *boards.ElementInput `json:"element"`
	boards.ElementInput
}

func (h *httpHandler) handleListBoards(c *gin.Context) {
	list, err := h.boards.List(c.Request.Context(), actorFromContext(c))
	if err != nil {
		h.respondError(c, "boards.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *httpHandler) handleCreateBoard(c *gin.Context) {
	var request createBoardRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	board, err := h.boards.Create(c.Request.Context(), actorFromContext(c), request.BoardName)
	if err != nil {
		h.respondError(c, "boards.create", err)
		return
	}
	respondData(c, http.StatusCreated, board)
}

func (h *httpHandler) handleSearchBoards(c *gin.Context) {
	list, err := h.boards.Search(c.Request.Context(), actorFromContext(c), c.Query("name"))
	if err != nil {
		h.respondError(c, "boards.search", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *httpHandler) handleCountBoards(c *gin.Context) {
	count, err := h.boards.CountByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, "boards.count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *httpHandler) handleGetBoard(c *gin.Context) {
	board, err := h.boards.Get(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		h.respondError(c, "boards.get", err)
		return
	}
	respondData(c, http.StatusOK, board)
}

func (h *httpHandler) handleUpdateBoard(c *gin.Context) {
	var request updateBoardRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	board, err := h.boards.Update(c.Request.Context(), actorFromContext(c), c.Param("boardId"), boards.UpdateInput{
		Content:  request.Content,
		Elements: request.Elements,
	})
	if err != nil {
		h.respondError(c, "boards.update", err)
		return
	}
	respondData(c, http.StatusOK, board)
}

func (h *httpHandler) handleToggleFavorite(c *gin.Context) {
	board, err := h.boards.ToggleFavorite(c.Request.Context(), actorFromContext(c), c.Param("boardId"))
	if err != nil {
		h.respondError(c, "boards.toggle_favorite", err)
		return
	}
	respondData(c, http.StatusOK, board)
}

func (h *httpHandler) handleDeleteBoard(c *gin.Context) {
	board, err := h.boards.Delete(c.Request.Context(), actorFromContext(c), c.Param("boardId"))
	if err != nil {
		h.respondError(c, "boards.delete", err)
		return
	}
	respondMessage(c, http.StatusOK, "Board deleted successfully", gin.H{"id": board.ID})
}

func (h *httpHandler) handleCreateElement(c *gin.Context) {
	var request boards.ElementInput
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	element, err := h.boards.CreateElement(c.Request.Context(), actorFromContext(c), c.Param("boardId"), request)
	if err != nil {
		h.respondError(c, "boards.create_element", err)
		return
	}
	respondMessage(c, http.StatusCreated, "Element added to board successfully", element)
}

func (h *httpHandler) handleUpsertElement(c *gin.Context) {
	var request upsertElementRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	input := request.ElementInput
	if request.Element != nil {
		input = *request.Element
	}
	board, err := h.boards.UpsertElement(c.Request.Context(), actorFromContext(c), c.Param("boardId"), input)
	if err != nil {
		h.respondError(c, "boards.upsert_element", err)
		return
	}
	respondData(c, http.StatusOK, board)
}

func (h *httpHandler) handleDeleteElement(c *gin.Context) {
	board, err := h.boards.DeleteElement(c.Request.Context(), actorFromContext(c), c.Param("boardId"), c.Param("elementId"))
	if err != nil {
		h.respondError(c, "boards.delete_element", err)
		return
	}
	respondData(c, http.StatusOK, board)
}

func (h *httpHandler) handleBringToFront(c *gin.Context) {
	element, err := h.boards.BringToFront(c.Request.Context(), actorFromContext(c), c.Param("boardId"), c.Param("elementId"))
	if err != nil {
		h.respondError(c, "boards.bring_to_front", err)
		return
	}
	respondData(c, http.StatusOK, element)
}

func (h *httpHandler) handleUploadImage(c *gin.Context) {
	upload, closeUpload, err := formUpload(c, "image", "file")
	if err != nil {
		h.respondError(c, "boards.upload_image", err)
		return
	}
	defer closeUpload()
	element, err := h.boards.UploadImage(c.Request.Context(), actorFromContext(c), c.Param("boardId"), upload)
	if err != nil {
		h.respondError(c, "boards.upload_image", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "url": element.Src, "data": element})
}

func (h *httpHandler) handleProcessPDF(c *gin.Context) {
	upload, closeUpload, err := formUpload(c, "pdf")
	if err != nil {
		h.respondError(c, "boards.process_pdf", err)
		return
	}
	defer closeUpload()
	element, err := h.boards.ProcessPDF(c.Request.Context(), actorFromContext(c), c.Param("boardId"), upload)
	if err != nil {
		h.respondError(c, "boards.process_pdf", err)
		return
	}
	respondMessage(c, http.StatusCreated, "PDF processed and added as element", element)
}

func (h *httpHandler) handleExportBoard(c *gin.Context) {
	board, err := h.boards.Get(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		h.respondError(c, "boards.export", err)
		return
	}
	var document bytes.Buffer
	if err := h.exporter.Render(&document, board); err != nil {
		h.respondError(c, "boards.export", err)
		return
	}
	h.logger.Debug("board exported", zap.String("board_id", board.ID), zap.Int("bytes", document.Len()))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exporter.Filename(board)))
	c.Data(http.StatusOK, h.exporter.ContentType(), document.Bytes())
}

func (h *httpHandler) handleBoardImages(c *gin.Context) {
	images, err := h.boards.Images(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		h.respondError(c, "boards.images", err)
		return
	}
	respondData(c, http.StatusOK, images)
}
