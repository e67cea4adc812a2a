package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/pals/internal/observability"
	"github.com/danmuck/pals/internal/protocol/pals"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

type segmentsBody struct {
	Variant  string   `json:"variant,omitempty"`
	Segments [][]byte `json:"segments"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"variant": s.cfg.Variant.String(),
			"service": s.cfg.Name,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/encode", s.handleEncode)
	v1.POST("/decode", s.handleDecode)
}

func (s *Server) handleEncode(c *gin.Context) {
	codec, err := s.codecFor(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBufferBytes)
	var body segmentsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		s.fail(c, status, fmt.Errorf("parse encode request: %w", err))
		return
	}

	buf, err := codec.Encode(body.Segments)
	observability.RecordCodecOp(codec.Variant(), "encode", len(buf), err)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	c.Header("X-Pals-Variant", codec.Variant().String())
	c.Header("X-Pals-Segments", strconv.Itoa(len(body.Segments)))
	c.Data(http.StatusOK, "application/octet-stream", buf)
}

func (s *Server) handleDecode(c *gin.Context) {
	codec, err := s.codecFor(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	buf, err := pals.ReadBuffer(c.Request.Body, s.cfg.MaxBufferBytes)
	var segments [][]byte
	if err == nil {
		segments, err = codec.Decode(buf)
	}
	observability.RecordCodecOp(codec.Variant(), "decode", len(buf), err)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, pals.ErrBufferTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.fail(c, status, err)
		return
	}
	c.JSON(http.StatusOK, segmentsBody{
		Variant:  codec.Variant().String(),
		Segments: segments,
	})
}

// codecFor resolves per-request overrides of the configured variant and policy.
func (s *Server) codecFor(c *gin.Context) (pals.Codec, error) {
	variant := s.cfg.Variant
	opts := s.cfg.Options

	if raw := c.Query("variant"); raw != "" {
		v, err := pals.ParseVariant(raw)
		if err != nil {
			return pals.Codec{}, err
		}
		variant = v
	}
	if raw := c.Query("permit_empty"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return pals.Codec{}, fmt.Errorf("invalid permit_empty %q: %w", raw, err)
		}
		opts.PermitEmptySegments = v
	}
	if raw := c.Query("strict"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return pals.Codec{}, fmt.Errorf("invalid strict %q: %w", raw, err)
		}
		opts.StrictTrailing = v
	}
	return pals.New(variant, opts), nil
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	kind := pals.KindOf(err)
	c.Set(observability.ErrorKindKey, kind)
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
