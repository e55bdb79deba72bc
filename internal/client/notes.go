package client

import (
	"context"

	"github.com/Prabisha01/de/internal/notes"
)

// CreateNote attaches a sticky note to a board.
func (c *Client) CreateNote(ctx context.Context, input notes.CreateInput) (notes.Note, error) {
	var note notes.Note
	resp, err := c.authedRequest(ctx).SetBody(input).Post(apiPrefix + "/note/create")
	_, err = do("create note", resp, err, &note)
	return note, err
}

// ListNotes returns the notes on a board.
func (c *Client) ListNotes(ctx context.Context, boardID string) ([]notes.Note, error) {
	var list []notes.Note
	resp, err := c.authedRequest(ctx).
		SetPathParam("boardId", boardID).
		Get(apiPrefix + "/note/board/{boardId}")
	_, err = do("list notes", resp, err, &list)
	return list, err
}

// UpdateNote applies a partial update to a note.
func (c *Client) UpdateNote(ctx context.Context, noteID string, input notes.UpdateInput) (notes.Note, error) {
	var note notes.Note
	resp, err := c.authedRequest(ctx).
		SetPathParam("noteId", noteID).
		SetBody(input).
		Put(apiPrefix + "/note/update/{noteId}")
	_, err = do("update note", resp, err, &note)
	return note, err
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	resp, err := c.authedRequest(ctx).
		SetPathParam("noteId", noteID).
		Delete(apiPrefix + "/note/delete/{noteId}")
	_, err = do("delete note", resp, err, nil)
	return err
}
