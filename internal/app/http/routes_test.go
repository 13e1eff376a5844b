package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mediaapi "artist-media/internal/api/media"
	"artist-media/internal/domain/catalog"
	mediadomain "artist-media/internal/domain/media"
	"artist-media/internal/domain/users"
	"artist-media/internal/domain/works"
	"artist-media/internal/media/imagefield"
	"artist-media/internal/media/registry"
	"artist-media/internal/media/storage"
	"artist-media/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "test-secret"

type server struct {
	r     *gin.Engine
	db    *gorm.DB
	reg   *registry.Registry
	media *storage.FileSystem
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mediaStorage := storage.NewFileSystem(t.TempDir(), "/media")
	archiveStorage := storage.NewFileSystem(t.TempDir(), "/archive")
	db := testutil.OpenDB(t, catalog.Models()...)

	reg := catalog.NewRegistry(catalog.Storages{Media: mediaStorage, Archive: archiveStorage})

	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:        db,
		Registry:  reg,
		Media:     mediaStorage,
		Archive:   archiveStorage,
		JWTSecret: secret,
		Workers:   2,
	})
	return &server{r: r, db: db, reg: reg, media: mediaStorage}
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"email":   fmt.Sprintf("user%d@example.com", userID),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (s *server) do(t *testing.T, req *http.Request, tok string) *httptest.ResponseRecorder {
	t.Helper()
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, method, url string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "upload.jpg")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, url string, v any) *http.Request {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndAuth(t *testing.T) {
	s := newServer(t)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/admin/fields", nil), token(t, 1, "user"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListFields(t *testing.T) {
	s := newServer(t)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/admin/fields", nil), token(t, 1, "admin"))
	require.Equal(t, http.StatusOK, w.Code)

	fields := decode[[]mediaapi.FieldDTO](t, w)
	var paths []string
	for _, f := range fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{catalog.ImageFile, catalog.UserAvatar, catalog.ArtworkImage, catalog.SeriesCover}, paths)
}

func TestUploadImageRendersOnSave(t *testing.T) {
	s := newServer(t)

	w := s.do(t, multipartRequest(t, http.MethodPost, "/images", nil, testutil.JPEG(t, 640, 480)), token(t, 1, "user"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[struct {
		ID     uint               `json:"id"`
		Width  int                `json:"width"`
		Height int                `json:"height"`
		Image  mediaapi.ImageDTO `json:"image"`
	}](t, w)
	assert.Equal(t, 640, resp.Width)
	assert.Equal(t, 480, resp.Height)
	assert.Equal(t, "/media/images/upload.jpg", resp.Image.URL)
	assert.NotEmpty(t, resp.Image.Variations["thumbnail"].Digest)
	assert.Equal(t, "/media/images/upload.thumbnail.jpg", resp.Image.Variations["thumbnail"].URL)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/media/images/upload.thumbnail.jpg", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/images/%d", resp.ID), nil), token(t, 1, "user"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, multipartRequest(t, http.MethodPost, "/images", nil, []byte("not an image")), token(t, 1, "user"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRemovesOriginalWhenRenderFails(t *testing.T) {
	s := newServer(t)
	b, err := s.reg.Resolve(catalog.ImageFile)
	require.NoError(t, err)
	b.Field.Renderer = imagefield.RendererFunc(func(context.Context, image.Image, imagefield.Variation) (image.Image, error) {
		return nil, errors.New("no renderer today")
	})

	w := s.do(t, multipartRequest(t, http.MethodPost, "/images", nil, testutil.JPEG(t, 64, 64)), token(t, 1, "user"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	ok, err := s.media.Exists("images/upload.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	var count int64
	require.NoError(t, s.db.Model(&mediadomain.Image{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestArtworkManualVariationsThenAdminRender(t *testing.T) {
	s := newServer(t)
	user := token(t, 7, "user")

	w := s.do(t, multipartRequest(t, http.MethodPost, "/series", map[string]string{"title": "Blue <b>period</b>"}, nil), user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	series := decode[struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}](t, w)
	assert.Equal(t, "Blue period", series.Title)

	w = s.do(t, multipartRequest(t, http.MethodPost, "/artworks", map[string]string{
		"title":     "Harbour",
		"series_id": fmt.Sprint(series.ID),
	}, testutil.JPEG(t, 400, 300)), user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	art := decode[struct {
		ID    uint               `json:"id"`
		Image mediaapi.ImageDTO `json:"image"`
	}](t, w)
	assert.Empty(t, art.Image.Variations["thumbnail"].Digest, "artwork variations are manual")

	w = s.do(t, jsonRequest(t, "/admin/rendervariations", map[string]any{
		"field_paths": []string{catalog.ArtworkImage},
	}), token(t, 1, "admin"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"rendered":2`)

	w = s.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/series/%d", series.ID), nil), user)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Items []struct {
			Image mediaapi.ImageDTO `json:"image"`
		} `json:"items"`
	}](t, w)
	require.Len(t, got.Items, 1)
	assert.NotEmpty(t, got.Items[0].Image.Variations["thumbnail"].Digest)

	w = s.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/artworks/%d", art.ID), nil), token(t, 8, "user"))
	assert.Equal(t, http.StatusNotFound, w.Code, "other users cannot see the artwork")

	w = s.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/artworks/%d", art.ID), nil), user)
	require.Equal(t, http.StatusOK, w.Code)
	ok, err := s.media.Exists(art.Image.File)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminRenderErrors(t *testing.T) {
	s := newServer(t)
	admin := token(t, 1, "admin")

	w := s.do(t, jsonRequest(t, "/admin/rendervariations", map[string]any{
		"field_paths": []string{"MyStorageModel.image"},
	}), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		"Error parsing field_path 'MyStorageModel.image'. Use format <app.model.field app.model.field>.",
		decode[map[string]any](t, w)["error"])

	w = s.do(t, jsonRequest(t, "/admin/rendervariations", map[string]any{
		"field_paths": []string{"works.<b>Art</b>&'image"},
	}), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		"Error parsing field_path 'works.<b>Art</b>&'image'. Use format <app.model.field app.model.field>.",
		decode[map[string]any](t, w)["error"])

	w = s.do(t, jsonRequest(t, "/admin/rendervariations", map[string]any{
		"field_paths": []string{"works.Sculpture.image"},
	}), admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, s.db.Create(&works.Artwork{Title: "Lost", Image: "artworks/lost.jpg"}).Error)
	w = s.do(t, jsonRequest(t, "/admin/rendervariations", map[string]any{
		"field_paths": []string{catalog.ArtworkImage},
	}), admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, jsonRequest(t, "/admin/rendervariations", map[string]any{
		"field_paths":    []string{catalog.ArtworkImage},
		"ignore_missing": true,
	}), admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"missing":1`)

	req := httptest.NewRequest(http.MethodPost, "/admin/rendervariations", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w = s.do(t, req, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAvatar(t *testing.T) {
	s := newServer(t)
	u := users.User{Email: "painter@example.com", Role: "user"}
	require.NoError(t, s.db.Create(&u).Error)
	tok := token(t, u.ID, "user")

	w := s.do(t, multipartRequest(t, http.MethodPut, "/me/avatar", nil, testutil.JPEG(t, 200, 200)), tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[struct {
		Avatar mediaapi.ImageDTO `json:"avatar"`
	}](t, w)
	assert.NotEmpty(t, first.Avatar.Variations["thumbnail"].Digest)

	w = s.do(t, multipartRequest(t, http.MethodPut, "/me/avatar", nil, testutil.JPEG(t, 120, 120)), tok)
	require.Equal(t, http.StatusOK, w.Code)

	ok, err := s.media.Exists(first.Avatar.File)
	require.NoError(t, err)
	assert.False(t, ok, "the previous avatar is removed")

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/me", nil), tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "painter@example.com")
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t)

	w := s.do(t, jsonRequest(t, "/auth/register", map[string]any{
		"name": "Painter", "email": "Painter@Example.com", "password": "oils4ever",
	}), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, jsonRequest(t, "/auth/register", map[string]any{
		"name": "Again", "email": "painter@example.com", "password": "oils4ever",
	}), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, jsonRequest(t, "/auth/register", map[string]any{
		"name": "Weak", "email": "weak@example.com", "password": "short",
	}), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, jsonRequest(t, "/auth/login", map[string]any{
		"email": "painter@example.com", "password": "wrong1234",
	}), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, jsonRequest(t, "/auth/login", map[string]any{
		"email": "painter@example.com", "password": "oils4ever",
	}), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := decode[map[string]string](t, w)["token"]
	require.NotEmpty(t, tok)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/me", nil), tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "painter@example.com")
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/admin/fields", nil), tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
