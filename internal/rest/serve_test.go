// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/logging"
	"github.com/mlnoga/resonance/internal/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter() *gin.Engine {
	return NewRouter(ops.NewContext(logging.Nop()))
}

func pngOf(t *testing.T, width, height, channels int, value uint8) []byte {
	t.Helper()
	f, err := frame.New(width, height, channels)
	require.NoError(t, err)
	for i := range f.Data {
		f.Data[i] = value
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, frame.FormatPNG))
	return buf.Bytes()
}

// Builds a multipart request with an image and further form fields
func multipartRequest(t *testing.T, path string, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if image != nil {
		part, err := w.CreateFormFile("image", "in.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := serve(testRouter(), httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestLevel(t *testing.T) {
	body := `{"conditions":{"weather":"clear","timeOfDay":"day","speedKmh":60,"ambientLux":50000},
		"brightness":0.50196,"contrast":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/level", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(testRouter(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct{ Level float64 }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.1406, resp.Level, 1e-3)
}

func TestLevelBadInputs(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":     `{"conditions":`,
		"weather":    `{"conditions":{"weather":"hail","timeOfDay":"day"}}`,
		"brightness": `{"conditions":{"weather":"clear","timeOfDay":"day"},"brightness":2}`,
		"speed":      `{"conditions":{"weather":"clear","timeOfDay":"day","speedKmh":-1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/level", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(testRouter(), req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestStats(t *testing.T) {
	rec := serve(testRouter(), multipartRequest(t, "/api/v1/stats", pngOf(t, 8, 8, 1, 51), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.2, resp["brightness"], 1e-9)
	assert.Equal(t, 0.0, resp["contrast"])
}

func TestStatsRejectsBadROI(t *testing.T) {
	req := multipartRequest(t, "/api/v1/stats", pngOf(t, 8, 8, 1, 51), map[string]string{"roi": "4,4,8,8"})
	rec := serve(testRouter(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsMissingImage(t *testing.T) {
	rec := serve(testRouter(), multipartRequest(t, "/api/v1/stats", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyFixedSeed(t *testing.T) {
	r := testRouter()
	img := pngOf(t, 12, 10, 3, 128)
	params := map[string]string{"params": `{"mode":"fixed","level":0.2,"distribution":"uniform","seed":42}`}

	a := serve(r, multipartRequest(t, "/api/v1/apply", img, params))
	require.Equal(t, http.StatusOK, a.Code, a.Body.String())
	assert.Equal(t, "image/png", a.Header().Get("Content-Type"))
	assert.Equal(t, "42", a.Header().Get(HeaderNoiseSeed))
	assert.Equal(t, "0.2", a.Header().Get(HeaderNoiseLevel))

	out, err := frame.Read(bytes.NewReader(a.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 12, out.Width)
	assert.Equal(t, 10, out.Height)
	assert.Equal(t, 3, out.Channels)

	b := serve(r, multipartRequest(t, "/api/v1/apply", img, params))
	require.Equal(t, http.StatusOK, b.Code)
	assert.Empty(t, cmp.Diff(a.Body.Bytes(), b.Body.Bytes()))
}

func TestApplyAdaptiveDrawsSeed(t *testing.T) {
	params := map[string]string{"params": `{"conditions":{"weather":"rain","timeOfDay":"night","ambientLux":3}}`}
	rec := serve(testRouter(), multipartRequest(t, "/api/v1/apply", pngOf(t, 8, 8, 3, 60), params))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := strconv.ParseUint(rec.Header().Get(HeaderNoiseSeed), 10, 64)
	assert.NoError(t, err)
}

func TestApplyErrors(t *testing.T) {
	img := pngOf(t, 8, 8, 3, 60)
	for name, params := range map[string]string{
		"mode":   `{"mode":"magic"}`,
		"level":  `{"mode":"fixed","level":-1}`,
		"roi":    `{"mode":"fixed","level":0.1,"roi":{"x":6,"y":6,"width":4,"height":4}}`,
		"window": `{"mode":"spatial","window":-3}`,
		"json":   `{"mode":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(testRouter(), multipartRequest(t, "/api/v1/apply", img, map[string]string{"params": params}))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestIndex(t *testing.T) {
	rec := serve(testRouter(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/apply")
}
