package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant"
	"github.com/Eli-Gooding/ChatGenius-App/internal/chat/model"
	"github.com/Eli-Gooding/ChatGenius-App/library/jwt"
)

type fakeAssistant struct {
	answerResult *assistant.AnswerResult
	answerErr    error
	ingested     []assistant.MessageRecord
	ingestErr    error
	docWritten   int
	docErr       error
	gotDoc       *assistant.DocumentRecord
}

func (f *fakeAssistant) Answer(ctx context.Context, query string) (*assistant.AnswerResult, error) {
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.answerResult, nil
}

func (f *fakeAssistant) IngestMessage(ctx context.Context, record assistant.MessageRecord) error {
	if f.ingestErr != nil {
		return f.ingestErr
	}
	f.ingested = append(f.ingested, record)
	return nil
}

func (f *fakeAssistant) IngestDocument(ctx context.Context, record assistant.DocumentRecord) (int, error) {
	f.gotDoc = &record
	return f.docWritten, f.docErr
}

type fakeChatStore struct {
	channels map[string]*model.Channel
	files    map[string]*model.File
	content  []byte
	created  []*model.Message

	createErr   error
	downloadErr error
}

func (f *fakeChatStore) CreateMessage(ctx context.Context, msg *model.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeChatStore) GetChannel(ctx context.Context, id string) (*model.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, errors.WithStack(model.ErrNotFound)
	}
	return ch, nil
}

func (f *fakeChatStore) GetFile(ctx context.Context, id string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, errors.WithStack(model.ErrNotFound)
	}
	return file, nil
}

func (f *fakeChatStore) DownloadFile(ctx context.Context, file *model.File) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.content, nil
}

type fakeIngestQueue struct {
	queued []string
	err    error
}

func (f *fakeIngestQueue) AddIngestMessageTask(ctx context.Context, messageID string) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, messageID)
	return nil
}

func allowAuth(uc *jwt.UserClaims) func(ctx context.Context, out *jwt.UserClaims) error {
	return func(ctx context.Context, out *jwt.UserClaims) error {
		*out = *uc
		return nil
	}
}

func denyAuth(ctx context.Context, out *jwt.UserClaims) error {
	return errors.New("invalid token")
}

func newTestServer(t *testing.T, svc AssistantService, chat ChatStore, queue IngestQueue,
	authFunc func(ctx context.Context, uc *jwt.UserClaims) error) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	ctrl := NewController(svc, chat, queue, nil)
	if authFunc != nil {
		ctrl.authFunc = authFunc
	}

	server := gin.New()
	ctrl.RegisterRoutes(server)
	return server
}

func doJSON(t *testing.T, server *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleAssistantQuery(t *testing.T) {
	t.Parallel()

	svc := &fakeAssistant{answerResult: &assistant.AnswerResult{
		Answer: "The launch is on Friday.",
		Sources: []assistant.Match{{
			ID:    "m1",
			Score: 0.9,
			Metadata: assistant.EntryMetadata{
				Content:    "The launch is on Friday",
				SourceID:   "m1",
				SourceType: assistant.SourceTypeMessage,
			},
		}},
	}}
	server := newTestServer(t, svc, &fakeChatStore{}, nil, nil)

	recorder := doJSON(t, server, "/api/ai-assistant", gin.H{"query": "when is the launch?"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp assistantQueryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "The launch is on Friday.", resp.Response)
	require.Len(t, resp.Context, 1)
	require.Equal(t, "The launch is on Friday", resp.Context[0].Content)
}

func TestHandleAssistantQueryMissingQuery(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeAssistant{}, &fakeChatStore{}, nil, nil)

	recorder := doJSON(t, server, "/api/ai-assistant", gin.H{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleAssistantQueryFailure(t *testing.T) {
	t.Parallel()

	svc := &fakeAssistant{answerErr: &assistant.GenerationError{Err: errors.New("overloaded")}}
	server := newTestServer(t, svc, &fakeChatStore{}, nil, nil)

	recorder := doJSON(t, server, "/api/ai-assistant", gin.H{"query": "anything"})
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "Failed to process request", resp.Error)
}

func TestHandleFileProcess(t *testing.T) {
	t.Parallel()

	svc := &fakeAssistant{docWritten: 4}
	chat := &fakeChatStore{
		files: map[string]*model.File{"f1": {
			ID:          "f1",
			FileName:    "notes.txt",
			ContentType: "text/plain",
			ChannelName: "general",
			Username:    "bob",
			CreatedAt:   time.Now().UTC(),
		}},
		content: []byte("file body"),
	}
	server := newTestServer(t, svc, chat, nil, allowAuth(&jwt.UserClaims{Username: "bob"}))

	recorder := doJSON(t, server, "/api/files/process", gin.H{"fileId": "f1"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp fileProcessResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 4, resp.ChunksProcessed)

	require.NotNil(t, svc.gotDoc)
	require.Equal(t, "f1", svc.gotDoc.ID)
	require.Equal(t, []byte("file body"), svc.gotDoc.RawBytes)
}

func TestHandleFileProcessUnauthorized(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeAssistant{}, &fakeChatStore{}, nil, denyAuth)

	recorder := doJSON(t, server, "/api/files/process", gin.H{"fileId": "f1"})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandleFileProcessNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeAssistant{}, &fakeChatStore{files: map[string]*model.File{}},
		nil, allowAuth(&jwt.UserClaims{}))

	recorder := doJSON(t, server, "/api/files/process", gin.H{"fileId": "missing"})
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "File not found", resp.Error)
}

func TestHandleFileProcessPartialFailure(t *testing.T) {
	t.Parallel()

	svc := &fakeAssistant{
		docWritten: 3,
		docErr:     &assistant.PartialBatchError{Written: 3, Total: 4, Err: errors.New("rate limited")},
	}
	chat := &fakeChatStore{
		files:   map[string]*model.File{"f1": {ID: "f1", FileName: "notes.txt", ContentType: "text/plain"}},
		content: []byte("x"),
	}
	server := newTestServer(t, svc, chat, nil, allowAuth(&jwt.UserClaims{}))

	recorder := doJSON(t, server, "/api/files/process", gin.H{"fileId": "f1"})
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotNil(t, resp.ChunksProcessed)
	require.Equal(t, 3, *resp.ChunksProcessed)
}

func TestHandleFileProcessUnsupportedFormat(t *testing.T) {
	t.Parallel()

	svc := &fakeAssistant{
		docErr: &assistant.UnsupportedFormatError{FileName: "report.pdf", ContentType: "application/pdf"},
	}
	chat := &fakeChatStore{
		files:   map[string]*model.File{"f1": {ID: "f1", FileName: "report.pdf", ContentType: "application/pdf"}},
		content: []byte("%PDF"),
	}
	server := newTestServer(t, svc, chat, nil, allowAuth(&jwt.UserClaims{}))

	recorder := doJSON(t, server, "/api/files/process", gin.H{"fileId": "f1"})
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Contains(t, resp.Error, "report.pdf")
}

func TestHandleMessageCreateQueued(t *testing.T) {
	t.Parallel()

	chat := &fakeChatStore{channels: map[string]*model.Channel{
		"c1": {ID: "c1", ChannelName: "general"},
	}}
	queue := &fakeIngestQueue{}
	svc := &fakeAssistant{}
	uc := &jwt.UserClaims{Username: "alice"}
	uc.Subject = "u1"
	server := newTestServer(t, svc, chat, queue, allowAuth(uc))

	recorder := doJSON(t, server, "/api/messages", gin.H{
		"content":   "The launch is on Friday",
		"channelId": "c1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, chat.created, 1)
	msg := chat.created[0]
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "general", msg.ChannelName)
	require.Equal(t, "u1", msg.UserID)
	require.Equal(t, "alice", msg.Username)

	// with a queue configured the embedding happens asynchronously
	require.Equal(t, []string{msg.ID}, queue.queued)
	require.Empty(t, svc.ingested)
}

func TestHandleMessageCreateInline(t *testing.T) {
	t.Parallel()

	chat := &fakeChatStore{channels: map[string]*model.Channel{
		"c1": {ID: "c1", ChannelName: "general"},
	}}
	svc := &fakeAssistant{}
	server := newTestServer(t, svc, chat, nil, allowAuth(&jwt.UserClaims{Username: "alice"}))

	recorder := doJSON(t, server, "/api/messages", gin.H{
		"content":   "hello",
		"channelId": "c1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, svc.ingested, 1)
	require.Equal(t, "hello", svc.ingested[0].TextContent)
	require.Equal(t, "general", svc.ingested[0].ChannelName)
}

func TestHandleMessageCreateIngestFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	chat := &fakeChatStore{channels: map[string]*model.Channel{
		"c1": {ID: "c1", ChannelName: "general"},
	}}
	svc := &fakeAssistant{ingestErr: errors.New("provider down")}
	server := newTestServer(t, svc, chat, nil, allowAuth(&jwt.UserClaims{Username: "alice"}))

	recorder := doJSON(t, server, "/api/messages", gin.H{
		"content":   "hello",
		"channelId": "c1",
	})

	// the primary write succeeded; the side effect failure is only logged
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, chat.created, 1)
}

func TestHandleMessageCreateUnauthorized(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeAssistant{}, &fakeChatStore{}, nil, denyAuth)

	recorder := doJSON(t, server, "/api/messages", gin.H{
		"content":   "hello",
		"channelId": "c1",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandleMessageCreateReply(t *testing.T) {
	t.Parallel()

	chat := &fakeChatStore{channels: map[string]*model.Channel{
		"c1": {ID: "c1", ChannelName: "general"},
	}}
	svc := &fakeAssistant{}
	server := newTestServer(t, svc, chat, nil, allowAuth(&jwt.UserClaims{Username: "alice"}))

	recorder := doJSON(t, server, "/api/messages", gin.H{
		"content":         "agreed",
		"channelId":       "c1",
		"parentMessageId": "m1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, svc.ingested, 1)
	require.True(t, svc.ingested[0].IsReply)
	require.Equal(t, "m1", svc.ingested[0].ParentID)
}
