package integration

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"hybrid-rag-be/internal/config"
	"hybrid-rag-be/internal/dto"
	"hybrid-rag-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
)

func TestPipelineStatusAndReinitialize(t *testing.T) {
	for _, key := range config.RequiredEnv {
		t.Setenv(key, "set-for-test")
	}

	app := newTestApp(&fakeEngine{queryRaw: "ok"})

	// 1. Fresh process: handle not built yet
	req := httptest.NewRequest("GET", "/api/pipeline/v1/status", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var statusRes serverutils.BaseResponse[dto.PipelineStatusResponse]
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&statusRes))
	assert.False(t, statusRes.Data.PipelineReady)
	for _, key := range config.RequiredEnv {
		assert.True(t, statusRes.Data.Env[key], "expected %s reported present", key)
	}

	// 2. Reinitialize builds a handle
	reinitRes, code, err := postJSON(app, "/api/pipeline/v1/reinitialize", nil)
	assert.NoError(t, err)
	assert.Equal(t, 200, code)

	var reinitData dto.ReinitializeResponse
	assert.NoError(t, json.Unmarshal(reinitRes.Data, &reinitData))
	assert.True(t, reinitData.PipelineReady)
	assert.GreaterOrEqual(t, reinitData.ElapsedMs, int64(0))

	// 3. Status now reports ready
	req = httptest.NewRequest("GET", "/api/pipeline/v1/status", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	statusRes = serverutils.BaseResponse[dto.PipelineStatusResponse]{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&statusRes))
	assert.True(t, statusRes.Data.PipelineReady)
}

func TestPipelineReinitialize_SetupFailure(t *testing.T) {
	app := newTestApp(&fakeEngine{setupErr: errors.New("verify llm credentials: status 401")})

	res, code, err := postJSON(app, "/api/pipeline/v1/reinitialize", nil)
	assert.NoError(t, err)
	assert.Equal(t, 500, code)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "pipeline setup")
}
