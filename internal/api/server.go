// Package api serves decoded FLIRT signatures over a small REST surface:
// upload a blob, then browse its modules and functions.
package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/sigscope/internal/logger"
	"github.com/samcharles93/sigscope/internal/sigstore"
)

// maxUploadBytes bounds one uploaded signature blob.
const maxUploadBytes = 64 << 20

type Server struct {
	store *SignatureStore
	log   logger.Logger
	clock func() time.Time
}

func NewServer(store *SignatureStore, log logger.Logger) *Server {
	if store == nil {
		store = NewSignatureStore()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		store: store,
		log:   log,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/signatures", s.handleUpload)
	e.GET("/v1/signatures", s.handleList)
	e.GET("/v1/signatures/:id", s.handleGet)
	e.GET("/v1/signatures/:id/modules", s.handleModules)
	e.GET("/v1/signatures/:id/functions", s.handleFunctions)
	e.DELETE("/v1/signatures/:id", s.handleDelete)
	e.GET("/healthz", s.handleHealthz)
}

func (s *Server) handleUpload(c *echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes+1))
	if err != nil {
		return writeBadRequest(c, "read request body: "+err.Error())
	}
	if len(body) == 0 {
		return writeBadRequest(c, "empty request body")
	}
	if len(body) > maxUploadBytes {
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", "signature exceeds upload limit")
	}

	res, err := sigstore.LoadBytes(body)
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, "decode_error", err.Error())
	}

	summary := s.store.Create(res, s.clock())
	s.log.Info("signature decoded",
		"id", summary.ID,
		"library", summary.Library,
		"version", summary.Version,
		"modules", summary.ModuleCount,
	)
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, SignatureList{Signatures: s.store.List()})
}

func (s *Server) handleGet(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "no such signature")
	}
	return c.JSON(http.StatusOK, rec.Summary)
}

func (s *Server) handleModules(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "no such signature")
	}
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 100)

	mods := rec.Result.Modules
	total := len(mods)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := ModuleList{Total: total, Offset: offset}
	out.Modules = make([]ModuleDTO, 0, end-offset)
	for i := offset; i < end; i++ {
		out.Modules = append(out.Modules, moduleDTO(i, &mods[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleFunctions(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "no such signature")
	}
	entries := rec.Result.AllFunctions()
	out := FunctionList{Total: len(entries)}
	out.Functions = make([]FunctionEntryDTO, len(entries))
	for i, e := range entries {
		out.Functions[i] = FunctionEntryDTO{
			ModuleIndex: e.ModuleIndex,
			Name:        e.Function.Name,
			Offset:      e.Function.Offset,
			Local:       e.Function.Local,
			Collision:   e.Function.Collision,
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "no such signature")
	}
	return c.JSON(http.StatusOK, DeleteResp{ID: id, Deleted: true})
}

func (s *Server) handleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

func queryInt(c *echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
