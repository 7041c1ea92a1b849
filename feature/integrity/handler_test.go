package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"shared-save/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, db *gorm.DB) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "worlds", "saves", "", zap.NewNop(), db)
	NewHandler(svc).RegisterRoutes(app)
	return app, mockClient
}

func TestHandleStorageCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "worlds").Return(true, nil)
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "saves/kerbin/a.sfsw"}
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "worlds", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, float64(1), body["snapshots"])
}

func TestHandleStorageCheck_Fix(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "worlds").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "worlds", mock.Anything).Return(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage?fix=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "worlds", mock.Anything)
}

func TestHandleStorageCheck_Error(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "worlds").Return(false, assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleLedgerCheck_Fix(t *testing.T) {
	app, _ := setupTestApp(t, setupSQLite(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/ledger", nil))
	require.NoError(t, err)
	var before map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&before))
	assert.Equal(t, false, before["matched"])

	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/ledger?fix=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var after map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&after))
	assert.Equal(t, true, after["matched"])
}

func TestHandleLedgerCheck_NoDB(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/ledger", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleSnapshotCheck(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	app, _ := setupTestApp(t, db)

	sqlMock.ExpectQuery("SELECT \\* FROM `world_heads`").
		WillReturnRows(sqlmock.NewRows([]string{"world_id", "version", "object_key", "updated_at"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/snapshots", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleIntegrityCheck(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	app, mockClient := setupTestApp(t, db)

	// Every check fails fast; the combined report still succeeds.
	mockClient.On("BucketExists", mock.Anything, "worlds").Return(false, assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["storage"]["status"])
	assert.Equal(t, false, body["ledger"]["matched"])
	assert.Equal(t, "error", body["snapshots"]["status"])
}
