package cmd

import (
	"context"
	"net/http/httptest"
	"testing"

	"shared-save/core/config"
	"shared-save/core/database"
	"shared-save/core/ledger"
	"shared-save/core/remote"
	"shared-save/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRuntime(t *testing.T, apiKey string) *runtime {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	l := ledger.New(db)
	require.NoError(t, l.Migrate(context.Background()))

	cfg := &config.Config{}
	cfg.Server.ApiKey = apiKey
	cfg.Storage.Bucket = "worlds"
	cfg.Storage.Prefix = "saves"

	client := new(mocks.Client)
	return &runtime{
		cfg:    cfg,
		logger: zap.NewNop(),
		db:     db,
		ledger: l,
		client: client,
		store:  remote.NewObjectStore(client, "worlds", "saves", l, zap.NewNop()),
	}
}

func TestNewServer(t *testing.T) {
	rt := testRuntime(t, "secret")
	_, err := rt.ledger.Advance(context.Background(), ledger.Entry{WorldID: "kerbin", ObjectKey: "saves/kerbin/a.sfsw", Author: "ana"})
	require.NoError(t, err)

	app, err := newServer(rt)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode, "health is public")
	assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/worlds/kerbin", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/worlds/kerbin", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/integrity/ledger", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
