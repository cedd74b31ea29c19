package main

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scoreforge/internal/audio"
	"scoreforge/internal/diag"
	"scoreforge/internal/neural"
	"scoreforge/internal/pipeline"
	"scoreforge/internal/sheet"
)

// server groups the shared handles every request handler needs,
// matching magda-api's handler-struct-with-injected-config pattern
// (handlers.MagdaHandler) rather than package globals.
type server struct {
	cfg    *config
	logger *diag.Logger
}

func newServer(cfg *config, logger *diag.Logger) *server {
	return &server{cfg: cfg, logger: logger}
}

// healthCheck is the unauthenticated liveness endpoint magda-api's
// handler groups expose too (its /health).
func (s *server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// postSheet implements POST /v1/sheets: multipart image upload ->
// recognized Score JSON, processSheet exposed as a
// service call.
func (s *server) postSheet(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing \"image\" form file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pipeline.DefaultOMRTimeout)
	defer cancel()

	score, err := pipeline.ProcessSheet(ctx, data, &neural.Classifiers{}, s.logger)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId": uuid.New().String(),
		"score": score,
	})
}

// renderRequest is the JSON body for POST /v1/render: a previously
// recognized Score plus rendering parameters.
type renderRequest struct {
	Score     sheet.Score `json:"score"`
	Tempo     int         `json:"tempo"`
	Preset    int         `json:"preset"`
	SoundFont string      `json:"soundFont"`
	VoiceMask *voiceMask  `json:"voiceMask"`
}

type voiceMask struct {
	Soprano bool `json:"soprano"`
	Alto    bool `json:"alto"`
	Tenor   bool `json:"tenor"`
	Bass    bool `json:"bass"`
}

// postRender implements POST /v1/render: Score -> {wav, timingMap,
// totalDurationSec}, renderAudio exposed as a service call. The WAV
// travels base64-encoded inside the JSON envelope alongside the
// timing map, since the two are a paired output a caller feeds to an
// audio sink and a cursor renderer together.
func (s *server) postRender(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tempo := req.Tempo
	if tempo == 0 {
		tempo = s.cfg.DefaultTempo
	}
	soundfontRef := req.SoundFont
	if soundfontRef == "" {
		soundfontRef = s.cfg.DefaultSoundFont
	}

	mask := audio.AllVoices
	if req.VoiceMask != nil {
		mask = audio.VoiceMask{
			Soprano: req.VoiceMask.Soprano,
			Alto:    req.VoiceMask.Alto,
			Tenor:   req.VoiceMask.Tenor,
			Bass:    req.VoiceMask.Bass,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	result, err := pipeline.RenderAudio(ctx, &req.Score, tempo, req.Preset, mask, soundfontRef, s.logger)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wav":              base64.StdEncoding.EncodeToString(result.WAV),
		"timingMap":        result.Timing,
		"totalDurationSec": result.TotalDurationSec,
	})
}

// statusForError maps the engine's error taxonomy to HTTP status
// codes: caller-input problems are 4xx, everything else is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, sheet.ErrImageDecode), errors.Is(err, sheet.ErrImageTooSmall),
		errors.Is(err, sheet.ErrNoStavesDetected), errors.Is(err, sheet.ErrNoPlayableEvents):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sheet.ErrCancellation):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
