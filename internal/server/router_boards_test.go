package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Prabisha01/de/internal/boards"
	"github.com/Prabisha01/de/internal/notes"
	"github.com/Prabisha01/de/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T) []byte {
	t.Helper()
	canvas := image.NewRGBA(image.Rect(0, 0, 4, 4))
	canvas.Set(1, 1, color.RGBA{R: 255, A: 255})
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, canvas))
	return encoded.Bytes()
}

func multipartRequest(t *testing.T, url, token, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+token)
	return request
}

func TestAliceCreatesBoardAndAddsTextElement(t *testing.T) {
	harness := newAPIHarness(t)
	aliceID, token := harness.signUp(t, "alice", "")
	require.NotEmpty(t, token)

	board := harness.createBoard(t, token, "Trip")
	assert.Equal(t, "Trip", board.BoardName)
	assert.Empty(t, board.Elements)
	assert.False(t, board.IsFavorite)
	assert.Equal(t, aliceID, board.OwnerID)

	status, created := harness.do(t, http.MethodPost, "/api/v1/boards/"+board.ID+"/elements", token, map[string]string{
		"type":    "text",
		"content": "hello",
	})
	require.Equal(t, http.StatusCreated, status, created.Message)

	status, fetched := harness.do(t, http.MethodGet, "/api/v1/boards/"+board.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	stored := decodeData[boards.Board](t, fetched)
	require.Len(t, stored.Elements, 1)
	element := stored.Elements[0]
	assert.Equal(t, "text", element.Type)
	assert.Equal(t, "hello", element.Content)
	assert.Equal(t, boards.Position{X: 0, Y: 0}, element.Position)
	assert.Equal(t, boards.Size{Width: 100, Height: 100}, element.Size)
	require.NotNil(t, stored.Owner)
	assert.Equal(t, "alice", stored.Owner.Username)

	status, me := harness.do(t, http.MethodGet, "/api/v1/users/getMe", token, nil)
	require.Equal(t, http.StatusOK, status)
	profile := decodeData[users.Profile](t, me)
	assert.Equal(t, 1, profile.BoardsCount)
}

func TestLoginSetsCookieAndRejectsWrongPassword(t *testing.T) {
	harness := newAPIHarness(t)
	userID, _ := harness.signUp(t, "carol", "")

	body, err := json.Marshal(map[string]string{"username": "carol", "password": "pw123"})
	require.NoError(t, err)
	response, err := http.Post(harness.server.URL+"/api/v1/users/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_ = response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	var session *http.Cookie
	for _, cookie := range response.Cookies() {
		if cookie.Name == defaultCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	request, err := http.NewRequest(http.MethodGet, harness.server.URL+"/api/v1/users/getMe", http.NoBody)
	require.NoError(t, err)
	request.AddCookie(session)
	status, me := harness.send(t, request)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, userID, decodeData[users.Profile](t, me).ID)

	body, err = json.Marshal(map[string]string{"username": "carol", "password": "wrong"})
	require.NoError(t, err)
	response, err = http.Post(harness.server.URL+"/api/v1/users/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Empty(t, response.Cookies())

	status, payload := harness.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "carol2",
		"email":    "carol@x.com",
		"password": "pw123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, payload.Success)

	status, payload = harness.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "dave",
		"email":    "dave@x.com",
		"password": strings.Repeat("p", 73),
	})
	assert.Equal(t, http.StatusBadRequest, status, payload.Message)
	assert.Contains(t, payload.Message, "72 bytes")
}

func TestBoardMutationsRequireOwnership(t *testing.T) {
	harness := newAPIHarness(t)
	_, aliceToken := harness.signUp(t, "alice", "")
	_, bobToken := harness.signUp(t, "bob", "")
	_, adminToken := harness.signUp(t, "root", "admin")
	board := harness.createBoard(t, aliceToken, "Plans")

	mutations := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, "/api/v1/boards/" + board.ID, map[string]string{"content": "hijack"}},
		{http.MethodPatch, "/api/v1/boards/toggleFavorite/" + board.ID, nil},
		{http.MethodPost, "/api/v1/boards/" + board.ID + "/elements", map[string]string{"type": "text", "content": "x"}},
		{http.MethodDelete, "/api/v1/boards/" + board.ID + "/elements/missing", nil},
		{http.MethodPost, "/api/v1/note/create", map[string]string{"boardId": board.ID, "content": "x"}},
		{http.MethodDelete, "/api/v1/boards/" + board.ID, nil},
	}
	for _, mutation := range mutations {
		status, payload := harness.do(t, mutation.method, mutation.path, bobToken, mutation.body)
		assert.Equal(t, http.StatusForbidden, status, "%s %s", mutation.method, mutation.path)
		assert.False(t, payload.Success)
	}

	status, updated := harness.do(t, http.MethodPut, "/api/v1/boards/"+board.ID, aliceToken, map[string]string{"content": "packing list"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "packing list", decodeData[boards.Board](t, updated).Content)

	status, updated = harness.do(t, http.MethodPut, "/api/v1/boards/"+board.ID, adminToken, map[string]string{"content": "moderated"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "moderated", decodeData[boards.Board](t, updated).Content)

	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/"+board.ID, bobToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/not-a-uuid", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/0190b2a0-0000-7000-8000-000000000000", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/"+board.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestElementUpsertDeleteFavoriteAndReorder(t *testing.T) {
	harness := newAPIHarness(t)
	_, token := harness.signUp(t, "alice", "")
	board := harness.createBoard(t, token, "Canvas")
	base := "/api/v1/boards/" + board.ID

	status, first := harness.do(t, http.MethodPost, base+"/elements", token, map[string]string{"type": "text", "content": "one"})
	require.Equal(t, http.StatusCreated, status)
	firstElement := decodeData[boards.Element](t, first)
	status, second := harness.do(t, http.MethodPost, base+"/elements", token, map[string]string{"type": "text", "content": "two"})
	require.Equal(t, http.StatusCreated, status)
	secondElement := decodeData[boards.Element](t, second)
	assert.Greater(t, secondElement.Rank, firstElement.Rank)

	status, payload := harness.do(t, http.MethodPost, base+"/elements", token, map[string]string{"type": "text"})
	assert.Equal(t, http.StatusBadRequest, status, payload.Message)

	status, upserted := harness.do(t, http.MethodPut, base+"/elements", token, map[string]any{
		"element": map[string]any{"id": firstElement.ID, "type": "text", "content": "uno"},
	})
	require.Equal(t, http.StatusOK, status)
	afterReplace := decodeData[boards.Board](t, upserted)
	require.Len(t, afterReplace.Elements, 2)
	assert.Equal(t, "uno", afterReplace.Elements[0].Content)

	status, upserted = harness.do(t, http.MethodPut, base+"/elements", token, map[string]any{
		"id": "sticker-1", "type": "sticker", "content": "star",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[boards.Board](t, upserted).Elements, 3)

	status, deleted := harness.do(t, http.MethodDelete, base+"/elements/not-there", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[boards.Board](t, deleted).Elements, 3)
	status, deleted = harness.do(t, http.MethodDelete, base+"/elements/sticker-1", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[boards.Board](t, deleted).Elements, 2)

	status, fronted := harness.do(t, http.MethodPatch, base+"/elements/"+firstElement.ID+"/front", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Greater(t, decodeData[boards.Element](t, fronted).Rank, secondElement.Rank)

	status, toggled := harness.do(t, http.MethodPatch, "/api/v1/boards/toggleFavorite/"+board.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeData[boards.Board](t, toggled).IsFavorite)
	status, toggled = harness.do(t, http.MethodPatch, "/api/v1/boards/toggleFavorite/"+board.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decodeData[boards.Board](t, toggled).IsFavorite)
}

func TestListSearchAndCountAreScopedToCaller(t *testing.T) {
	harness := newAPIHarness(t)
	aliceID, aliceToken := harness.signUp(t, "alice", "")
	_, bobToken := harness.signUp(t, "bob", "")
	_, adminToken := harness.signUp(t, "root", "admin")
	harness.createBoard(t, aliceToken, "Summer Trip")
	harness.createBoard(t, aliceToken, "Groceries")
	harness.createBoard(t, bobToken, "Trip to 100%")

	status, listed := harness.do(t, http.MethodGet, "/api/v1/boards/getAllBoards", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, listed.Count)

	status, found := harness.do(t, http.MethodGet, "/api/v1/boards/search?name=trip", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	matches := decodeData[[]boards.Board](t, found)
	require.Len(t, matches, 1)
	assert.Equal(t, "Summer Trip", matches[0].BoardName)

	status, found = harness.do(t, http.MethodGet, "/api/v1/boards/search?name=trip", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]boards.Board](t, found), 2)

	status, found = harness.do(t, http.MethodGet, "/api/v1/boards/search?name=100%25", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]boards.Board](t, found), 1)

	status, counted := harness.do(t, http.MethodGet, "/api/v1/boards/users/"+aliceID, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, counted.Count)
}

func TestDeletingBoardCascadesNotes(t *testing.T) {
	harness := newAPIHarness(t)
	_, token := harness.signUp(t, "alice", "")
	board := harness.createBoard(t, token, "Notes")

	status, created := harness.do(t, http.MethodPost, "/api/v1/note/create", token, map[string]string{
		"boardId": board.ID,
		"content": "remember",
	})
	require.Equal(t, http.StatusCreated, status, created.Message)
	note := decodeData[notes.Note](t, created)
	assert.Equal(t, notes.NoteType("text"), note.Type)

	status, updated := harness.do(t, http.MethodPut, "/api/v1/note/update/"+note.ID, token, map[string]string{"content": "remembered"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "remembered", decodeData[notes.Note](t, updated).Content)

	status, listed := harness.do(t, http.MethodGet, "/api/v1/note/board/"+board.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, listed.Count)

	status, _ = harness.do(t, http.MethodDelete, "/api/v1/boards/"+board.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/"+board.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = harness.do(t, http.MethodPut, "/api/v1/note/update/"+note.ID, token, map[string]string{"content": "gone"})
	assert.Equal(t, http.StatusNotFound, status)

	status, me := harness.do(t, http.MethodGet, "/api/v1/users/getMe", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decodeData[users.Profile](t, me).BoardsCount)
}

func TestUploadImageProcessPDFExportAndListImages(t *testing.T) {
	harness := newAPIHarness(t)
	_, token := harness.signUp(t, "alice", "")
	board := harness.createBoard(t, token, "Media")
	base := harness.server.URL + "/api/v1/boards/" + board.ID

	status, uploaded := harness.send(t, multipartRequest(t, base+"/upload", token, "image", "photo.png", pngFixture(t)))
	require.Equal(t, http.StatusCreated, status, uploaded.Message)
	stored := decodeData[boards.Element](t, uploaded)
	assert.Equal(t, boards.ElementTypeImage, stored.Type)
	require.True(t, strings.HasPrefix(stored.Src, "/uploads/"), stored.Src)

	served, err := http.Get(harness.server.URL + stored.Src)
	require.NoError(t, err)
	servedBytes, err := io.ReadAll(served.Body)
	_ = served.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, served.StatusCode)
	assert.Equal(t, pngFixture(t), servedBytes)

	status, rejected := harness.send(t, multipartRequest(t, base+"/upload", token, "image", "notes.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, status, rejected.Message)

	status, missing := harness.send(t, multipartRequest(t, base+"/upload", token, "other", "photo.png", pngFixture(t)))
	assert.Equal(t, http.StatusBadRequest, status, missing.Message)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	status, processed := harness.send(t, multipartRequest(t, base+"/pdf", token, "pdf", "doc.pdf", pdf))
	require.Equal(t, http.StatusCreated, status, processed.Message)
	page := decodeData[boards.Element](t, processed)
	assert.Equal(t, boards.Size{Width: 500, Height: 700}, page.Size)

	status, images := harness.do(t, http.MethodGet, "/api/v1/boards/"+board.ID+"/images", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{stored.Src, page.Src}, decodeData[[]string](t, images))

	request, err := http.NewRequest(http.MethodGet, base+"/export", http.NoBody)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)
	exported, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	document, err := io.ReadAll(exported.Body)
	_ = exported.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, exported.StatusCode)
	assert.Equal(t, "application/pdf", exported.Header.Get("Content-Type"))
	assert.Contains(t, exported.Header.Get("Content-Disposition"), "board-"+board.ID+".pdf")
	assert.True(t, bytes.HasPrefix(document, []byte("%PDF")))
}

func TestDeletingBoardKeepsUploadsItDidNotIngest(t *testing.T) {
	harness := newAPIHarness(t)
	_, aliceToken := harness.signUp(t, "alice", "")
	_, bobToken := harness.signUp(t, "bob", "")
	aliceBoard := harness.createBoard(t, aliceToken, "Alice")
	bobBoard := harness.createBoard(t, bobToken, "Bob")

	status, uploaded := harness.send(t, multipartRequest(t, harness.server.URL+"/api/v1/boards/"+aliceBoard.ID+"/upload", aliceToken, "image", "photo.png", pngFixture(t)))
	require.Equal(t, http.StatusCreated, status, uploaded.Message)
	ref := decodeData[boards.Element](t, uploaded).Src
	path, ok := harness.local.LocalPath(ref)
	require.True(t, ok, ref)

	status, payload := harness.do(t, http.MethodPut, "/api/v1/boards/"+bobBoard.ID, bobToken, map[string]any{
		"elements": []map[string]any{{"type": "image", "content": "x", "src": ref}},
	})
	require.Equal(t, http.StatusOK, status, payload.Message)
	status, payload = harness.do(t, http.MethodDelete, "/api/v1/boards/"+bobBoard.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, status, payload.Message)

	_, err := os.Stat(path)
	require.NoError(t, err, "upload owned by another board must survive")

	status, payload = harness.do(t, http.MethodDelete, "/api/v1/boards/"+aliceBoard.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, status, payload.Message)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expected the owning board's upload to be removed, got %v", err)
}

func TestAdminRoutesAndUserCascade(t *testing.T) {
	harness := newAPIHarness(t)
	aliceID, aliceToken := harness.signUp(t, "alice", "")
	_, adminToken := harness.signUp(t, "root", "admin")
	board := harness.createBoard(t, aliceToken, "Doomed")

	status, _ := harness.do(t, http.MethodGet, "/api/v1/users/admin/users", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, listed := harness.do(t, http.MethodGet, "/api/v1/users/admin/users?role=user", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, listed.Count)

	status, _ = harness.do(t, http.MethodPut, "/api/v1/users/updateUser/"+aliceID, aliceToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status)

	status, updated := harness.do(t, http.MethodPut, "/api/v1/users/admin/users/"+aliceID, adminToken, map[string]any{"plan": "premium"})
	require.Equal(t, http.StatusOK, status, updated.Message)
	status, subscription := harness.do(t, http.MethodGet, "/api/v1/users/subscription", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, users.PlanPremium, decodeData[users.Subscription](t, subscription).Plan)

	status, _ = harness.do(t, http.MethodPut, "/api/v1/users/admin/users/"+aliceID, adminToken, map[string]any{"isBanned": true})
	require.Equal(t, http.StatusOK, status)
	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/getAllBoards", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = harness.do(t, http.MethodDelete, "/api/v1/users/admin/users/"+aliceID, adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = harness.do(t, http.MethodGet, "/api/v1/boards/"+board.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = harness.do(t, http.MethodGet, "/api/v1/users/getMe", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBoardStreamEmitsBoardChangeEvents(t *testing.T) {
	harness := newAPIHarness(t)
	aliceID, token := harness.signUp(t, "alice", "")

	request, err := http.NewRequest(http.MethodGet, harness.server.URL+"/api/v1/boards/stream", http.NoBody)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)
	streamResp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = streamResp.Body.Close()
	})
	require.Equal(t, http.StatusOK, streamResp.StatusCode)
	assert.Equal(t, "text/event-stream", streamResp.Header.Get("Content-Type"))
	require.Eventually(t, func() bool {
		return harness.realtime.subscriberCount(aliceID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	board := harness.createBoard(t, token, "Live")

	type eventPayload struct {
		BoardIDs []string `json:"boardIds"`
		Action   string   `json:"action"`
	}
	type readResult struct {
		line string
		err  error
	}

	streamReader := bufio.NewReader(streamResp.Body)
	currentEventType := ""
	deadline := time.After(5 * time.Second)
	for {
		resultCh := make(chan readResult, 1)
		go func() {
			line, err := streamReader.ReadString('\n')
			resultCh <- readResult{line: line, err: err}
		}()
		select {
		case <-deadline:
			t.Fatal("timed out waiting for realtime event")
		case res := <-resultCh:
			require.NoError(t, res.err)
			line := strings.TrimSpace(res.line)
			if strings.HasPrefix(line, "event:") {
				currentEventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				continue
			}
			if !strings.HasPrefix(line, "data:") || currentEventType != RealtimeEventBoardChanged {
				continue
			}
			var payload eventPayload
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &payload))
			assert.Equal(t, []string{board.ID}, payload.BoardIDs)
			assert.Equal(t, boards.ChangeCreated, payload.Action)
			return
		}
	}
}

func TestHealthIsPublic(t *testing.T) {
	harness := newAPIHarness(t)
	response, err := http.Get(harness.server.URL + "/health")
	require.NoError(t, err)
	defer response.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
