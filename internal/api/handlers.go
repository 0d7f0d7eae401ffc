// Package api exposes layout runs and offset settings over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/youruser/deckprint/internal/config"
	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/offset"
	"github.com/youruser/deckprint/internal/pipeline"
	"github.com/youruser/deckprint/internal/sheet"
)

// Server holds what the handlers share. Render requests are layered over
// a copy of Base, so a request only names what differs. Paths a request
// names must resolve inside Root.
type Server struct {
	Base    config.Config
	Root    string
	Catalog *layout.Catalog
	Store   *offset.Store
}

var errOutsideRoot = errors.New("path outside the server root")

// NewServer loads the catalog named by base. An empty root means the
// working directory.
func NewServer(base config.Config, root string) (*Server, error) {
	cat, err := base.Catalog()
	if err != nil {
		return nil, err
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Server{Base: base, Root: abs, Catalog: cat, Store: base.OffsetStore()}, nil
}

type layoutInfo struct {
	Paper       string `json:"paper"`
	Card        string `json:"card"`
	Slots       int    `json:"slots"`
	Columns     int    `json:"columns"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Template    string `json:"template"`
	MirrorBacks bool   `json:"mirror_backs"`
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) layoutsHandler(c *gin.Context) {
	var out []layoutInfo
	for _, l := range s.Catalog.Layouts() {
		out = append(out, layoutInfo{
			Paper:       l.Paper,
			Card:        l.Card,
			Slots:       l.Capacity(),
			Columns:     l.Cols(),
			Width:       l.Width,
			Height:      l.Height,
			Template:    l.Template,
			MirrorBacks: l.MirrorBacks,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reference_ppi": layout.ReferencePPI, "layouts": out})
}

// renderHandler runs one layout job synchronously. Input directories and
// the output path are paths on the server, under Root.
func (s *Server) renderHandler(c *gin.Context) {
	cfg := s.Base.Clone()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.confineRequest(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sum, err := pipeline.Run(c.Request.Context(), cfg)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// confineRequest checks every path the request changed. The offset file and
// layout catalog are server settings and cannot be changed per request.
func (s *Server) confineRequest(cfg *config.Config) error {
	if cfg.OffsetFile != s.Base.OffsetFile {
		return errors.New("offset_file cannot be set per request")
	}
	if cfg.Layouts != s.Base.Layouts {
		return errors.New("layouts cannot be set per request")
	}
	paths := []struct {
		name      string
		got, base *string
	}{
		{"front_dir", &cfg.FrontDir, &s.Base.FrontDir},
		{"back_dir", &cfg.BackDir, &s.Base.BackDir},
		{"double_sided_dir", &cfg.DoubleSidedDir, &s.Base.DoubleSidedDir},
		{"filler", &cfg.Filler, &s.Base.Filler},
		{"output", &cfg.Output, &s.Base.Output},
		{"summary", &cfg.Summary, &s.Base.Summary},
		{"label_font", &cfg.LabelFont, &s.Base.LabelFont},
	}
	for _, p := range paths {
		if *p.got == *p.base || *p.got == "" {
			continue
		}
		resolved, err := s.confine(*p.got)
		if err != nil {
			return fmt.Errorf("%s %q: %w", p.name, *p.got, err)
		}
		*p.got = resolved
	}
	return nil
}

// confine resolves p against Root and rejects anything that escapes it.
func (s *Server) confine(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.Root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(s.Root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return p, nil
}

// statusFor maps run errors caused by the request to 4xx.
func statusFor(err error) int {
	for _, bad := range []error{
		config.ErrInvalid,
		layout.ErrUnsupportedCombination,
		sheet.ErrInvalidSkip,
		sheet.ErrUnpaddedFrontCount,
		sheet.ErrMissingBackForFront,
	} {
		if errors.Is(err, bad) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) getOffsetHandler(c *gin.Context) {
	st, err := s.Store.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) putOffsetHandler(c *gin.Context) {
	var req struct {
		X *int `json:"x_offset" binding:"required"`
		Y *int `json:"y_offset" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := s.Store.Save(*req.X, *req.Y)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// calibrationHandler returns the calibration PDF for ?paper=.
func (s *Server) calibrationHandler(c *gin.Context) {
	paper := c.DefaultQuery("paper", s.Base.Paper)
	size, err := s.Catalog.PaperSize(paper)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	dir, err := os.MkdirTemp("", "deckprint-cal-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "calibration.pdf")
	if err := offset.CalibrationSheet(size, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, "calibration-"+paper+".pdf")
}
