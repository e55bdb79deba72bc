package client

import (
	"context"
	"fmt"
	"io"

	"github.com/Prabisha01/de/internal/boards"
	"github.com/go-resty/resty/v2"
)

// BoardUpdate replaces board content and, when Elements is non-nil, the element sequence.
type BoardUpdate struct {
	Content  *string                `json:"content,omitempty"`
	Elements *[]boards.ElementInput `json:"elements,omitempty"`
}

// ListBoards returns the boards visible to the caller.
func (c *Client) ListBoards(ctx context.Context) ([]boards.Board, error) {
	var list []boards.Board
	resp, err := c.authedRequest(ctx).Get(apiPrefix + "/boards/getAllBoards")
	_, err = do("list boards", resp, err, &list)
	return list, err
}

// SearchBoards matches board names case-insensitively.
func (c *Client) SearchBoards(ctx context.Context, name string) ([]boards.Board, error) {
	var list []boards.Board
	resp, err := c.authedRequest(ctx).
		SetQueryParam("name", name).
		Get(apiPrefix + "/boards/search")
	_, err = do("search boards", resp, err, &list)
	return list, err
}

// CountBoards returns how many boards userID owns.
func (c *Client) CountBoards(ctx context.Context, userID string) (int, error) {
	resp, err := c.authedRequest(ctx).
		SetPathParam("userId", userID).
		Get(apiPrefix + "/boards/users/{userId}")
	payload, err := do("count boards", resp, err, nil)
	return payload.Count, err
}

// CreateBoard creates an empty board owned by the caller.
func (c *Client) CreateBoard(ctx context.Context, name string) (boards.Board, error) {
	var board boards.Board
	resp, err := c.authedRequest(ctx).
		SetBody(map[string]string{"boardName": name}).
		Post(apiPrefix + "/boards/createBoard")
	_, err = do("create board", resp, err, &board)
	return board, err
}

// GetBoard fetches one board.
func (c *Client) GetBoard(ctx context.Context, boardID string) (boards.Board, error) {
	var board boards.Board
	resp, err := c.boardRequest(ctx, boardID).Get(apiPrefix + "/boards/{boardId}")
	_, err = do("get board", resp, err, &board)
	return board, err
}

// UpdateBoard applies update to a board.
func (c *Client) UpdateBoard(ctx context.Context, boardID string, update BoardUpdate) (boards.Board, error) {
	var board boards.Board
	resp, err := c.boardRequest(ctx, boardID).SetBody(update).Put(apiPrefix + "/boards/{boardId}")
	_, err = do("update board", resp, err, &board)
	return board, err
}

// DeleteBoard removes a board together with its notes and uploads.
func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	resp, err := c.boardRequest(ctx, boardID).Delete(apiPrefix + "/boards/{boardId}")
	_, err = do("delete board", resp, err, nil)
	return err
}

// ToggleFavorite flips the board's favorite flag.
func (c *Client) ToggleFavorite(ctx context.Context, boardID string) (boards.Board, error) {
	var board boards.Board
	resp, err := c.boardRequest(ctx, boardID).Patch(apiPrefix + "/boards/toggleFavorite/{boardId}")
	_, err = do("toggle favorite", resp, err, &board)
	return board, err
}

// AddElement appends an element to a board.
func (c *Client) AddElement(ctx context.Context, boardID string, input boards.ElementInput) (boards.Element, error) {
	var element boards.Element
	resp, err := c.boardRequest(ctx, boardID).SetBody(input).Post(apiPrefix + "/boards/{boardId}/elements")
	_, err = do("add element", resp, err, &element)
	return element, err
}

// UpsertElement replaces the element with the same id or appends it.
func (c *Client) UpsertElement(ctx context.Context, boardID string, input boards.ElementInput) (boards.Board, error) {
	var board boards.Board
	resp, err := c.boardRequest(ctx, boardID).
		SetBody(map[string]any{"element": input}).
		Put(apiPrefix + "/boards/{boardId}/elements")
	_, err = do("upsert element", resp, err, &board)
	return board, err
}

// DeleteElement removes one element from a board.
func (c *Client) DeleteElement(ctx context.Context, boardID, elementID string) (boards.Board, error) {
	var board boards.Board
	resp, err := c.boardRequest(ctx, boardID).
		SetPathParam("elementId", elementID).
		Delete(apiPrefix + "/boards/{boardId}/elements/{elementId}")
	_, err = do("delete element", resp, err, &board)
	return board, err
}

// BringToFront raises an element above every other element on the board.
func (c *Client) BringToFront(ctx context.Context, boardID, elementID string) (boards.Element, error) {
	var element boards.Element
	resp, err := c.boardRequest(ctx, boardID).
		SetPathParam("elementId", elementID).
		Patch(apiPrefix + "/boards/{boardId}/elements/{elementId}/front")
	_, err = do("bring to front", resp, err, &element)
	return element, err
}

// UploadImage stores an image and adds it to the board as an image element.
func (c *Client) UploadImage(ctx context.Context, boardID, filename string, body io.Reader) (boards.Element, error) {
	var element boards.Element
	resp, err := c.boardRequest(ctx, boardID).
		SetFileReader("image", filename, body).
		Post(apiPrefix + "/boards/{boardId}/upload")
	_, err = do("upload image", resp, err, &element)
	return element, err
}

// ProcessPDF rasterizes the first page of a PDF and adds it to the board.
func (c *Client) ProcessPDF(ctx context.Context, boardID, filename string, body io.Reader) (boards.Element, error) {
	var element boards.Element
	resp, err := c.boardRequest(ctx, boardID).
		SetFileReader("pdf", filename, body).
		Post(apiPrefix + "/boards/{boardId}/pdf")
	_, err = do("process pdf", resp, err, &element)
	return element, err
}

// BoardImages lists the image references on a board. No credential is required.
func (c *Client) BoardImages(ctx context.Context, boardID string) ([]string, error) {
	var images []string
	resp, err := c.request(ctx).
		SetPathParam("boardId", boardID).
		Get(apiPrefix + "/boards/{boardId}/images")
	_, err = do("board images", resp, err, &images)
	return images, err
}

// ExportBoard downloads the board rendered as a PDF document.
func (c *Client) ExportBoard(ctx context.Context, boardID string) ([]byte, error) {
	resp, err := c.boardRequest(ctx, boardID).
		SetHeader("Accept", "application/pdf").
		Get(apiPrefix + "/boards/{boardId}/export")
	if err != nil {
		return nil, fmt.Errorf("export board request: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) boardRequest(ctx context.Context, boardID string) *resty.Request {
	return c.authedRequest(ctx).SetPathParam("boardId", boardID)
}
