package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageworks/backstage/internal/admin"
	"github.com/stageworks/backstage/internal/authgate"
	"github.com/stageworks/backstage/internal/blobstore"
	"github.com/stageworks/backstage/internal/contentsync"
	"github.com/stageworks/backstage/internal/docstore"
	"github.com/stageworks/backstage/pkg/content"
)

const adminEmail = "morentinomar@gmail.com"

type testApp struct {
	docs     *docstore.Memory
	provider *authgate.MemoryProvider
	gate     *authgate.Gate
	server   *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	docs := docstore.NewMemory()
	blobs, err := blobstore.NewLocal(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	provider := authgate.NewMemoryProvider()
	gate := authgate.New(provider, []string{adminEmail}, "http://localhost:8080/admin", zerolog.Nop())
	mgr := contentsync.NewManager(docs, zerolog.Nop())
	orch := admin.New(docs, blobs, mgr, zerolog.Nop())
	gate.SetOnAuthenticated(func() { mgr.RefreshAll(context.Background()) })

	srv := NewServer(docs, gate, mgr, orch, zerolog.Nop(), WithLocalBlobs(blobs))
	ts := httptest.NewServer(srv.Handler(nil))
	t.Cleanup(ts.Close)

	return &testApp{docs: docs, provider: provider, gate: gate, server: ts}
}

func (a *testApp) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(a.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

// signIn walks the full link flow and returns a session token.
func (a *testApp) signIn(t *testing.T) string {
	t.Helper()

	resp := a.postJSON(t, "/api/v1/auth/link", map[string]string{"email": adminEmail})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	token := a.provider.PendingToken(adminEmail)
	require.NotEmpty(t, token)

	resp = a.postJSON(t, "/api/v1/auth/confirm", map[string]string{"email": adminEmail, "token": token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var sess authgate.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func (a *testApp) do(t *testing.T, method, path, sessionToken string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	var reader *bytes.Buffer
	if body == nil {
		reader = &bytes.Buffer{}
	} else {
		reader = body
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func multipartFile(t *testing.T, field, filename, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	resp, err := http.Get(a.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthLinkDeniedEmail(t *testing.T) {
	a := newTestApp(t)

	resp := a.postJSON(t, "/api/v1/auth/link", map[string]string{"email": "stranger@example.com"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, a.provider.PendingToken("stranger@example.com"), "no link may be issued")
}

func TestAuthConfirmWrongEmail(t *testing.T) {
	a := newTestApp(t)

	resp := a.postJSON(t, "/api/v1/auth/link", map[string]string{"email": adminEmail})
	resp.Body.Close()
	token := a.provider.PendingToken(adminEmail)

	resp = a.postJSON(t, "/api/v1/auth/confirm", map[string]string{"email": "stranger@example.com", "token": token})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The session was never established.
	_, ok := a.gate.CurrentSession()
	assert.False(t, ok)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodGet, "/api/v1/admin/content", "", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := a.do(t, http.MethodGet, "/api/v1/admin/content", "bogus-token", nil, "")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestUploadListDeleteLifecycle(t *testing.T) {
	a := newTestApp(t)
	token := a.signIn(t)

	// Upload a carousel photo.
	body, contentType := multipartFile(t, "file", "photo.jpg", "jpeg bytes")
	resp := a.do(t, http.MethodPost, "/api/v1/admin/carousel", token, body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item content.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	resp.Body.Close()
	assert.Equal(t, "photo.jpg", item.Name)
	require.NotEmpty(t, item.ID)

	// The admin view has it.
	resp = a.do(t, http.MethodGet, "/api/v1/admin/content", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state contentsync.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	require.Len(t, state.Carousel, 1)
	assert.Equal(t, "photo.jpg", state.Carousel[0].Name)

	// The public site serves it.
	resp, err := http.Get(a.server.URL + "/api/v1/site/carousel")
	require.NoError(t, err)
	var items []content.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	require.Len(t, items, 1)
	assert.Equal(t, item.URL, items[0].URL)

	// The blob resolves over HTTP.
	blobResp, err := http.Get(strings.Replace(item.URL, "http://localhost:8080", a.server.URL, 1))
	require.NoError(t, err)
	blobResp.Body.Close()
	assert.Equal(t, http.StatusOK, blobResp.StatusCode)

	// Delete it.
	resp = a.do(t, http.MethodDelete, "/api/v1/admin/carousel/"+item.ID+"?url="+item.URL, token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The collection is empty again and the public carousel falls back to
	// the static default image set.
	resp, err = http.Get(a.server.URL + "/api/v1/site/carousel")
	require.NoError(t, err)
	items = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	assert.Len(t, items, len(content.DefaultCarousel()))
	assert.Equal(t, content.DefaultCarousel()[0].URL, items[0].URL)
}

func TestAddVideoLink(t *testing.T) {
	a := newTestApp(t)
	token := a.signIn(t)

	payload, _ := json.Marshal(map[string]string{"url": "https://youtube.com/watch?v=abc"})
	resp := a.do(t, http.MethodPost, "/api/v1/admin/videos/link", token, bytes.NewBuffer(payload), "application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item content.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	resp.Body.Close()
	assert.Empty(t, item.Name)

	items, err := a.docs.ListAll(context.Background(), content.CollectionVideos)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestUpdateAndReadSettings(t *testing.T) {
	a := newTestApp(t)
	token := a.signIn(t)

	blob := `{"title":"Gira 2026","description":"","bookingEmail":"tour@sweetjay.mx"}`
	resp := a.do(t, http.MethodPut, "/api/v1/admin/settings/eventsInfo", token, bytes.NewBufferString(blob), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The public read returns exactly the stored blob.
	siteResp, err := http.Get(a.server.URL + "/api/v1/site/settings/eventsInfo")
	require.NoError(t, err)
	defer siteResp.Body.Close()
	var got map[string]any
	require.NoError(t, json.NewDecoder(siteResp.Body).Decode(&got))
	assert.Equal(t, "Gira 2026", got["title"])
}

func TestSiteSettingsFallback(t *testing.T) {
	a := newTestApp(t)

	resp, err := http.Get(a.server.URL + "/api/v1/site/settings/bioInfo")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bio content.BioInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bio))
	assert.Equal(t, content.DefaultBioInfo().Heading, bio.Heading)
}

func TestSiteUnreachableStoreServesFallback(t *testing.T) {
	a := newTestApp(t)
	a.docs.Fail[content.CollectionCarousel] = errors.New("unavailable")

	resp, err := http.Get(a.server.URL + "/api/v1/site/carousel")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []content.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Len(t, items, len(content.DefaultCarousel()))
}

func TestUnknownCollectionsRejected(t *testing.T) {
	a := newTestApp(t)
	token := a.signIn(t)

	resp, err := http.Get(a.server.URL + "/api/v1/site/podcasts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, contentType := multipartFile(t, "file", "x.mp3", "data")
	resp = a.do(t, http.MethodPost, "/api/v1/admin/podcasts", token, body, contentType)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
