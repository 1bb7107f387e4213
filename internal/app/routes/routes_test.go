package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/controllers"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/pkg/filestorage"
	"github.com/yigit/studentrecords/internal/pkg/validation"
	"github.com/yigit/studentrecords/internal/testutil"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testAPI struct {
	router   *gin.Engine
	repo     *testutil.MemoryStudentRepository
	imageDir string
}

func newTestAPI(t *testing.T, updateLimit int64, db pinger) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := filepath.Join(t.TempDir(), "images")
	storage, err := filestorage.NewLocalStorage(dir, "images", 1<<20)
	require.NoError(t, err)

	repo := testutil.NewMemoryStudentRepository()
	service := services.NewStudentService(repo, storage, validation.NewStudentValidator(false), zerolog.Nop())

	router := gin.New()
	SetupRouter(router, controllers.NewStudentController(service), controllers.NewHealthController(db), Options{
		ImageDir:     dir,
		ImagePrefix:  "images",
		UpdateLimit:  updateLimit,
		UpdatePeriod: time.Minute,
	})
	return &testAPI{router: router, repo: repo, imageDir: dir}
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) multipart(t *testing.T, method, target string, fields map[string]string, upload *testutil.Upload) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := testutil.MultipartBody(t, fields, upload)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	return a.do(req)
}

func anaFields() map[string]string {
	return map[string]string{
		"studentId":   "ST001",
		"firstName":   "Ana",
		"lastName":    "Lee",
		"course":      "CS",
		"address":     "1 Main St",
		"badgeNumber": "BCH01",
	}
}

func pngUpload(t *testing.T) *testutil.Upload {
	return &testutil.Upload{Field: filestorage.FileField, Filename: "ana.png", ContentType: "image/png", Content: testutil.PNG(t)}
}

func decodeStudent(t *testing.T, w *httptest.ResponseRecorder) models.Student {
	t.Helper()
	var s models.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s), w.Body.String())
	return s
}

func (a *testAPI) create(t *testing.T, fields map[string]string) models.Student {
	t.Helper()
	w := a.multipart(t, http.MethodPost, "/api/students", fields, pngUpload(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeStudent(t, w)
}

func TestCreateAndFetchStudent(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})

	w := api.multipart(t, http.MethodPost, "/api/students", anaFields(), pngUpload(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))

	created := decodeStudent(t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ST001", created.StudentID)
	assert.Equal(t, "BCH01", created.BadgeNumber)
	require.True(t, strings.HasPrefix(created.ImagePic, "images/"))

	got := api.do(httptest.NewRequest(http.MethodGet, "/api/students/"+created.ID, nil))
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created, decodeStudent(t, got))

	image := api.do(httptest.NewRequest(http.MethodGet, "/"+created.ImagePic, nil))
	assert.Equal(t, http.StatusOK, image.Code)
	assert.Equal(t, testutil.PNG(t), image.Body.Bytes())
}

func TestCreateValidationErrorsAreListed(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})
	fields := anaFields()
	fields["studentId"] = "ST 001"
	delete(fields, "course")

	w := api.multipart(t, http.MethodPost, "/api/students", fields, pngUpload(t))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ValidationErrors
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	fieldsWithErrors := make([]string, 0, len(body.Errors))
	for _, e := range body.Errors {
		fieldsWithErrors = append(fieldsWithErrors, e.Field)
	}
	assert.ElementsMatch(t, []string{"studentId", "course"}, fieldsWithErrors)
	assert.Equal(t, 0, api.repo.Len())
}

func TestCreateConflictAndUploadErrors(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})
	api.create(t, anaFields())

	dup := api.multipart(t, http.MethodPost, "/api/students", anaFields(), pngUpload(t))
	assert.Equal(t, http.StatusConflict, dup.Code)

	other := anaFields()
	other["studentId"], other["badgeNumber"] = "ST002", "BCH02"

	txt := &testutil.Upload{Field: filestorage.FileField, Filename: "notes.txt", ContentType: "text/plain", Content: []byte("hi")}
	assert.Equal(t, http.StatusUnsupportedMediaType, api.multipart(t, http.MethodPost, "/api/students", other, txt).Code)

	assert.Equal(t, http.StatusBadRequest, api.multipart(t, http.MethodPost, "/api/students", other, nil).Code)
	assert.Equal(t, 1, api.repo.Len())
}

func TestListStudentsWithFilters(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})
	api.create(t, anaFields())
	second := anaFields()
	second["studentId"], second["badgeNumber"] = "ST002", "BCH02"
	api.create(t, second)

	list := func(query string) []models.Student {
		w := api.do(httptest.NewRequest(http.MethodGet, "/api/students"+query, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var students []models.Student
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &students))
		return students
	}

	assert.Len(t, list(""), 2)

	byID := list("?studentId=ST002")
	require.Len(t, byID, 1)
	assert.Equal(t, "ST002", byID[0].StudentID)

	assert.Len(t, list("?badgeNumber=BCH01"), 1)
	assert.Empty(t, list("?studentId=ST001&badgeNumber=BCH02"))

	none := api.do(httptest.NewRequest(http.MethodGet, "/api/students?studentId=ST999", nil))
	assert.JSONEq(t, "[]", none.Body.String())
}

func TestGetStudentErrors(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})

	assert.Equal(t, http.StatusBadRequest, api.do(httptest.NewRequest(http.MethodGet, "/api/students/nope", nil)).Code)
	assert.Equal(t, http.StatusNotFound,
		api.do(httptest.NewRequest(http.MethodGet, "/api/students/0f8fad5b-d9cb-469f-a165-70867728950e", nil)).Code)
}

func TestUpdateReplacesImage(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})
	created := api.create(t, anaFields())

	jpg := &testutil.Upload{Field: filestorage.FileField, Filename: "new.jpeg", ContentType: "image/jpeg", Content: testutil.JPEG(t)}
	w := api.multipart(t, http.MethodPut, "/api/students/"+created.ID, map[string]string{"course": "Math"}, jpg)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeStudent(t, w)
	assert.Equal(t, "Math", updated.Course)
	assert.Equal(t, "Ana", updated.FirstName)
	assert.NotEqual(t, created.ImagePic, updated.ImagePic)

	_, err := os.Stat(filepath.Join(api.imageDir, filepath.Base(created.ImagePic)))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(filepath.Join(api.imageDir, filepath.Base(updated.ImagePic)))
	assert.NoError(t, err)
}

func TestUpdateWithJSONBody(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})
	created := api.create(t, anaFields())

	req := httptest.NewRequest(http.MethodPut, "/api/students/"+created.ID, strings.NewReader(`{"firstName":"Anna"}`))
	req.Header.Set("Content-Type", "application/json")
	w := api.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeStudent(t, w)
	assert.Equal(t, "Anna", updated.FirstName)
	assert.Equal(t, created.ImagePic, updated.ImagePic)
}

func TestUpdateIsRateLimited(t *testing.T) {
	api := newTestAPI(t, 1, pinger{})
	created := api.create(t, anaFields())

	first := api.multipart(t, http.MethodPut, "/api/students/"+created.ID, map[string]string{"course": "Math"}, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := api.multipart(t, http.MethodPut, "/api/students/"+created.ID, map[string]string{"course": "Art"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Other routes are not limited
	assert.Equal(t, http.StatusOK, api.do(httptest.NewRequest(http.MethodGet, "/api/students", nil)).Code)
}

func TestDeleteStudent(t *testing.T) {
	api := newTestAPI(t, 20, pinger{})
	created := api.create(t, anaFields())

	w := api.do(httptest.NewRequest(http.MethodDelete, "/api/students/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Student has been deleted..."`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, api.do(httptest.NewRequest(http.MethodGet, "/api/students/"+created.ID, nil)).Code)
	assert.Equal(t, http.StatusNotFound, api.do(httptest.NewRequest(http.MethodDelete, "/api/students/"+created.ID, nil)).Code)
}

func TestHealth(t *testing.T) {
	up := newTestAPI(t, 20, pinger{})
	w := up.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	down := newTestAPI(t, 20, pinger{err: errors.New("no server")})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
