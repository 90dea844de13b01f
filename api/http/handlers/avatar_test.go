package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/contacts/pkg/avatar"
)

type uploaderStub struct {
	url   string
	err   error
	calls []avatar.Object
	data  []byte
}

func (u *uploaderStub) Upload(_ context.Context, obj avatar.Object) (string, error) {
	u.calls = append(u.calls, obj)
	b, _ := io.ReadAll(obj.Body)
	u.data = b
	return u.url, u.err
}

func newAvatarApp(up avatar.Uploader, maxBytes int64, gate fiber.Handler) *fiber.App {
	h := NewAvatarHandler(avatar.NewService(up, "avatars", maxBytes), zap.NewNop())
	app := fiber.New()
	app.Post("/upload_avatar", gate, h.Upload)
	return app
}

func multipartRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_avatar", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAvatarHandler_UploadImage(t *testing.T) {
	up := &uploaderStub{url: "https://cdn.example.com/avatars/x.png"}
	id := testIdentity()
	app := newAvatarApp(up, 1<<20, withIdentity(id))

	resp, body := send(t, app, multipartRequest(t, "file", "me.png", "image/png", []byte("\x89PNG fake")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://cdn.example.com/avatars/x.png", body["avatar_url"])
	require.Len(t, up.calls, 1)
	assert.Equal(t, "image/png", up.calls[0].ContentType)
	assert.Contains(t, up.calls[0].Key, "avatars/"+id.UserID.String()+"/")
	assert.Equal(t, []byte("\x89PNG fake"), up.data)
}

func TestAvatarHandler_KeyIgnoresClientFilename(t *testing.T) {
	up := &uploaderStub{url: "https://cdn.example.com/avatars/x.png"}
	app := newAvatarApp(up, 1<<20, withIdentity(testIdentity()))

	resp, _ := send(t, app, multipartRequest(t, "file", "shell.php", "image/png", []byte("\x89PNG fake")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, up.calls, 1)
	key := up.calls[0].Key
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotContains(t, key, ".php")
	assert.NotContains(t, key, "shell")
}

func TestAvatarHandler_RejectsNonImage(t *testing.T) {
	up := &uploaderStub{url: "unused"}
	app := newAvatarApp(up, 1<<20, withIdentity(testIdentity()))

	resp, body := send(t, app, multipartRequest(t, "file", "notes.txt", "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, "file is not an image", body["message"])
	assert.Empty(t, up.calls)
}

func TestAvatarHandler_TooLarge(t *testing.T) {
	up := &uploaderStub{url: "unused"}
	app := newAvatarApp(up, 4, withIdentity(testIdentity()))

	resp, _ := send(t, app, multipartRequest(t, "file", "big.png", "image/png", []byte("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Empty(t, up.calls)
}

func TestAvatarHandler_UpstreamFailure(t *testing.T) {
	up := &uploaderStub{err: errors.New("connection refused")}
	app := newAvatarApp(up, 1<<20, withIdentity(testIdentity()))

	resp, body := send(t, app, multipartRequest(t, "file", "me.jpg", "image/jpeg", []byte("jpeg")))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.NotContains(t, body["message"], "connection refused")
}

func TestAvatarHandler_MissingFile(t *testing.T) {
	up := &uploaderStub{}
	app := newAvatarApp(up, 1<<20, withIdentity(testIdentity()))

	resp, _ := send(t, app, multipartRequest(t, "other", "me.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
