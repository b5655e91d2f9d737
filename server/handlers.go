package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pagemaker/common"
	"pagemaker/export"
	"pagemaker/misc"
	"pagemaker/page"
	"pagemaker/sanitize"
	"pagemaker/split"
	"pagemaker/storage"
)

type markupRequest struct {
	HTML   string            `json:"html"`
	Target common.TargetArea `json:"target,omitempty"`
}

type sanitizeResponse struct {
	HTML   string            `json:"html"`
	Target common.TargetArea `json:"target"`
	Issues []string          `json:"issues,omitempty"`
}

type splitResponse struct {
	Modules []page.HTMLModule `json:"modules"`
}

type joinRequest struct {
	Modules []page.HTMLModule `json:"modules"`
	Target  common.TargetArea `json:"target,omitempty"`
}

type exportRequest struct {
	Modules page.Modules      `json:"modules"`
	Target  common.TargetArea `json:"target,omitempty"`
	Options export.Overrides  `json:"options"`
}

// maxBodySize limits JSON request bodies.
const maxBodySize = 8 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": misc.GetVersion()})
}

func (s *Server) sanitizeOptions(target common.TargetArea) sanitize.Options {
	opts := s.opts.Sanitize
	if target.IsValid() {
		opts.Target = target
	}
	return opts
}

func (s *Server) splitter(target common.TargetArea) *split.Splitter {
	opts := s.opts.Split
	if target.IsValid() {
		opts.Sanitize.Target = target
	}
	return split.New(opts, s.log)
}

func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req markupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	san := sanitize.New(s.sanitizeOptions(req.Target), s.log)
	out := san.Sanitize(req.HTML)
	writeJSON(w, http.StatusOK, sanitizeResponse{HTML: out, Target: san.Target(), Issues: san.Validate(out)})
}

// handleSplit reports every failure, including input that is not a string,
// with localized split failure message.
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	t := s.translator(r)

	var req markupRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.log.Debug("Split request rejected", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, t("split.failed", nil))
		return
	}
	modules, err := s.splitter(req.Target).Split(req.HTML)
	if err != nil {
		s.log.Warn("Unable to split markup", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, t("split.failed_detail", map[string]string{"reason": err.Error()}))
		return
	}
	if len(modules) == 0 {
		writeError(w, http.StatusUnprocessableEntity, t("split.empty", nil))
		return
	}
	writeJSON(w, http.StatusOK, splitResponse{Modules: modules})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": s.splitter(req.Target).Join(req.Modules)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := req.Options.Apply(s.opts.Export)
	if req.Target.IsMobile() {
		opts.MobileMode = true
	}
	writeHTML(w, export.New(s.log).Generate(req.Modules, opts))
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, s.translator(r)("page.not_found", nil))
		return
	}
	s.log.Error("Page storage failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.pages.GetPage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	var tpl page.Template
	if err := decodeBody(w, r, &tpl); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tpl.ID = chi.URLParam(r, "id")

	reg := page.NewRegistry()
	for _, m := range tpl.Content {
		if issues := reg.Validate(m); len(issues) > 0 {
			s.log.Warn("Saving page with incomplete module", zap.String("page", tpl.ID), zap.Strings("issues", issues))
		}
	}

	saved, err := s.pages.SavePage(r.Context(), &tpl)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handlePageHTML exports stored page, "mobile" and "full" query parameters
// override configured defaults.
func (s *Server) handlePageHTML(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.pages.GetPage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	opts := s.opts.Export
	q := r.URL.Query()
	if v, err := strconv.ParseBool(q.Get("mobile")); err == nil {
		opts.MobileMode = v
	}
	if v, err := strconv.ParseBool(q.Get("full")); err == nil {
		opts.FullDocument = v
	}
	if tpl.TargetArea.IsMobile() {
		opts.MobileMode = true
	}
	if opts.FullDocument && tpl.Name != "" {
		opts.Title = tpl.Name
	}
	writeHTML(w, export.New(s.log).Generate(tpl.Content, opts))
}

// uploadOverhead is allowance for multipart framing on top of image size.
const uploadOverhead = 1 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	t := s.translator(r)
	tooLarge := func() {
		writeError(w, http.StatusRequestEntityTooLarge, t("upload.too_large", map[string]string{"max": humanize.IBytes(uint64(s.opts.MaxUploadSize))}))
	}

	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+uploadOverhead)
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			tooLarge()
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	id := middleware.GetReqID(r.Context())
	progress := func(done, total int64) {
		s.log.Debug("Upload progress", zap.String("request", id), zap.String("file", hdr.Filename), zap.Int64("done", done), zap.Int64("total", total))
	}
	up, err := s.images.UploadImage(r.Context(), hdr.Filename, file, hdr.Size, progress)
	switch {
	case errors.Is(err, storage.ErrImageTooLarge):
		tooLarge()
	case errors.Is(err, storage.ErrUnsupportedImage):
		writeError(w, http.StatusUnsupportedMediaType, t("upload.unsupported", nil))
	case err != nil:
		s.log.Error("Unable to store image", zap.String("file", hdr.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, up)
	}
}
