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

// Package rest exposes the noise engine as an HTTP service.
package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/errs"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/mlnoga/resonance/internal/ops"
	"github.com/mlnoga/resonance/internal/ops/resonance"
	"github.com/mlnoga/resonance/internal/sr"
	"github.com/mlnoga/resonance/web"
)

// Header carrying the request ID, set on every response
const HeaderRequestID = "X-Request-ID"

// Response headers of the apply endpoint
const (
	HeaderNoiseSeed  = "X-Noise-Seed"
	HeaderNoiseLevel = "X-Noise-Level"
)

type server struct {
	c *ops.Context
}

// Creates the router for the API. Handlers share the given context, which must not be modified afterwards
func NewRouter(c *ops.Context) *gin.Engine {
	s := &server{c: c}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger)
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/level", s.postLevel)
			v1.POST("/stats", s.postStats)
			v1.POST("/apply", s.postApply)
		}
	}
	return r
}

// Listens and serves on the given address until the server fails
func Serve(addr string, c *ops.Context) error {
	c.Log.Info().Msgf("Listening on %s", addr)
	return NewRouter(c).Run(addr)
}

// Tags each request with a fresh ID and logs it on completion
func (s *server) requestLogger(g *gin.Context) {
	id := uuid.NewString()
	g.Header(HeaderRequestID, id)
	start := time.Now()
	g.Next()
	s.c.Log.Info().
		Str("requestId", id).
		Str("method", g.Request.Method).
		Str("path", g.Request.URL.Path).
		Int("status", g.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("request")
}

func getIndex(g *gin.Context) {
	g.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Writes an error response. Input errors map to 400, everything else to 500
func abort(g *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errs.IsInputError(err) {
		status = http.StatusBadRequest
	}
	g.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(g *gin.Context, err error) {
	g.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

type postLevelArgs struct {
	Conditions condition.DrivingConditions `json:"conditions"`
	Brightness float64                     `json:"brightness"`
	Contrast   float64                     `json:"contrast"`
}

func (s *server) postLevel(g *gin.Context) {
	var args postLevelArgs
	if err := g.ShouldBindJSON(&args); err != nil {
		badRequest(g, err)
		return
	}
	l, err := s.c.Engine.Calibration.Level(args.Conditions, args.Brightness, args.Contrast)
	if err != nil {
		abort(g, err)
		return
	}
	g.JSON(http.StatusOK, gin.H{"level": l})
}

// Decodes the multipart image field into a frame
func readImage(g *gin.Context) (*frame.Frame, error) {
	header, err := g.FormFile("image")
	if err != nil {
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := frame.Read(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", header.Filename, err)
	}
	f.FileName = header.Filename
	return f, nil
}

func (s *server) postStats(g *gin.Context) {
	f, err := readImage(g)
	if err != nil {
		badRequest(g, err)
		return
	}
	var roi *frame.Region
	if str := g.PostForm("roi"); str != "" {
		r, err := frame.ParseRegion(str)
		if err != nil {
			abort(g, err)
			return
		}
		roi = &r
	}
	m, err := resonance.Measure(f, roi, s.c)
	if err != nil {
		abort(g, err)
		return
	}
	g.JSON(http.StatusOK, m)
}

// Modes of the apply endpoint
const (
	ModeAdaptive = "adaptive"
	ModeSpatial  = "spatial"
	ModeFixed    = "fixed"
)

type applyParams struct {
	Mode         string                      `json:"mode"`
	Conditions   condition.DrivingConditions `json:"conditions"`
	ROI          *frame.Region               `json:"roi,omitempty"`
	Distribution noise.Distribution          `json:"distribution"`
	Seed         *int64                      `json:"seed,omitempty"` // Missing or negative for a fresh seed
	Level        float64                     `json:"level"`
	BaseNoise    float64                     `json:"baseNoise"`
	Window       int                         `json:"window"`
	Smooth       bool                        `json:"smooth"`
}

func (p *applyParams) seed() uint64 {
	if p.Seed == nil || *p.Seed < 0 {
		return noise.RandomSeed()
	}
	return uint64(*p.Seed)
}

// Runs the engine in the requested mode
func (s *server) run(f *frame.Frame, p *applyParams) (*sr.Result, error) {
	e := s.c.Engine
	switch p.Mode {
	case ModeAdaptive, "":
		return e.Adaptive(f, p.Conditions, p.ROI, p.seed())
	case ModeSpatial:
		window := p.Window
		if window == 0 {
			window = s.c.Window
		}
		return e.Spatial(f, p.BaseNoise, window, p.ROI, p.seed())
	case ModeFixed:
		return e.Fixed(f, p.Level, p.Distribution, p.ROI, p.seed(), p.Smooth)
	}
	return nil, errs.Invalidf("mode %q", p.Mode)
}

func (s *server) postApply(g *gin.Context) {
	var params applyParams
	if str := g.PostForm("params"); str != "" {
		if err := json.Unmarshal([]byte(str), &params); err != nil {
			badRequest(g, err)
			return
		}
	}
	f, err := readImage(g)
	if err != nil {
		badRequest(g, err)
		return
	}
	res, err := s.run(f, &params)
	if err != nil {
		abort(g, err)
		return
	}
	s.c.Log.Info().Msgf("%d: Applied %s noise to %s frame %s, %v",
		f.ID, modeName(params.Mode), f.DimensionsToString(), f.FileName, res)

	g.Header(HeaderNoiseSeed, strconv.FormatUint(res.Seed, 10))
	g.Header(HeaderNoiseLevel, res.Intensity.String())
	g.Header("Content-Type", "image/png")
	g.Status(http.StatusOK)
	if err := res.Frame.Write(g.Writer, frame.FormatPNG); err != nil {
		s.c.Log.Error().Msgf("%d: Encoding response: %s", f.ID, err.Error())
	}
}

func modeName(m string) string {
	if m == "" {
		return ModeAdaptive
	}
	return m
}
