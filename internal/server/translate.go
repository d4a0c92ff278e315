package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/usecase/internal/convert"
	"github.com/papapumpkin/usecase/internal/history"
	"github.com/papapumpkin/usecase/internal/narrative"
)

// Form part names accepted by the translation endpoints.
const (
	PartCatalog             = "use-case-catalog"
	PartScenarioSetPrefix   = "use-case-scenario-set-"
	PartTestSuiteTemplate   = "test-suite-template"
	PartCatalogTemplate     = "narrative-catalog-template"
	PartScenarioSetTemplate = "narrative-scenario-set-template"
)

// Response media types.
const (
	markdownType = "text/plain; charset=utf-8"
	xlsxType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errBadFileName = errors.New("invalid attachment file name")

// attachments groups the uploaded files by role.
type attachments struct {
	catalog         []*multipart.FileHeader
	scenarioSets    []*multipart.FileHeader
	template        []*multipart.FileHeader
	catalogTemplate []*multipart.FileHeader
	setTemplate     []*multipart.FileHeader
}

func collect(form *multipart.Form) attachments {
	var a attachments
	for name, files := range form.File {
		switch {
		case name == PartCatalog:
			a.catalog = append(a.catalog, files...)
		case strings.HasPrefix(name, PartScenarioSetPrefix):
			a.scenarioSets = append(a.scenarioSets, files...)
		case name == PartTestSuiteTemplate:
			a.template = append(a.template, files...)
		case name == PartCatalogTemplate:
			a.catalogTemplate = append(a.catalogTemplate, files...)
		case name == PartScenarioSetTemplate:
			a.setTemplate = append(a.setTemplate, files...)
		}
	}
	return a
}

// validate returns one message per problem; none means the upload is usable.
func (a attachments) validate() []string {
	var msgs []string
	switch {
	case len(a.catalog) > 1:
		msgs = append(msgs, "Too many use case catalog file.")
	case len(a.catalog) == 0:
		msgs = append(msgs, "No use case catalog file.")
	}
	if len(a.scenarioSets) == 0 {
		msgs = append(msgs, "No use case scenario set file.")
	}
	if len(a.template) > 1 {
		msgs = append(msgs, "Too many test suite template file.")
	}
	if len(a.catalogTemplate) > 1 || len(a.setTemplate) > 1 {
		msgs = append(msgs, "Too many narrative template file.")
	} else if len(a.catalogTemplate) != len(a.setTemplate) {
		msgs = append(msgs, "Narrative templates must be given as a catalog and scenario set pair.")
	}
	return msgs
}

func (s *Server) translateUseCase(w http.ResponseWriter, r *http.Request) {
	s.translate(w, r, convert.OpDocument)
}

func (s *Server) translateTestSuite(w http.ResponseWriter, r *http.Request) {
	s.translate(w, r, convert.OpTestSuite)
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request, op convert.Operation) {
	if !isMultipart(r) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	limit := s.cfg.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Sprintf("Malformed upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp parts only

	a := collect(r.MultipartForm)
	if msgs := a.validate(); len(msgs) > 0 {
		s.fail(w, r, http.StatusBadRequest, strings.Join(msgs, "\n"))
		return
	}

	work := filepath.Join(os.TempDir(), "usecase-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(work, "out"), 0o755); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Could not create a working directory.")
		return
	}
	defer os.RemoveAll(work) //nolint:errcheck // best-effort cleanup

	req, err := s.prepare(work, a, op)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	started := time.Now()
	res, err := convert.Run(req)
	s.record(r.Context(), op, a.catalog[0].Filename, res, err, started)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if op == convert.OpTestSuite {
		s.sendFile(w, r, res.Files[0], xlsxType)
		return
	}
	s.sendMixed(w, r, res.Files)
}

// prepare stores the uploads in work and describes the run over them.
func (s *Server) prepare(work string, a attachments, op convert.Operation) (convert.Request, error) {
	req := convert.Request{Op: op, OutputDir: filepath.Join(work, "out"), Confined: true}

	input, err := save(work, a.catalog[0])
	if err != nil {
		return req, err
	}
	req.Input = input
	for _, fh := range a.scenarioSets {
		if _, err := save(work, fh); err != nil {
			return req, err
		}
	}

	switch op {
	case convert.OpTestSuite:
		if len(a.template) == 1 {
			dir := filepath.Join(work, "template")
			if err := os.Mkdir(dir, 0o755); err != nil {
				return req, fmt.Errorf("storing template: %w", err)
			}
			if req.Template, err = save(dir, a.template[0]); err != nil {
				return req, err
			}
		}
	case convert.OpDocument:
		if req.Renderer, err = s.renderer(a); err != nil {
			return req, err
		}
	}
	return req, nil
}

// renderer returns the cached renderer for the uploaded template pair, or for
// the built-in templates when none was uploaded.
func (s *Server) renderer(a attachments) (*narrative.Renderer, error) {
	var catalogText, setText string
	if len(a.catalogTemplate) == 1 {
		var err error
		if catalogText, err = readPart(a.catalogTemplate[0]); err != nil {
			return nil, err
		}
		if setText, err = readPart(a.setTemplate[0]); err != nil {
			return nil, err
		}
	} else {
		cat, err := narrative.DefaultTemplate(narrative.CatalogTemplate)
		if err != nil {
			return nil, err
		}
		set, err := narrative.DefaultTemplate(narrative.ScenarioSetTemplate)
		if err != nil {
			return nil, err
		}
		catalogText, setText = string(cat), string(set)
	}
	return s.renderers.Renderer(catalogText, setText)
}

func (s *Server) record(ctx context.Context, op convert.Operation, input string, res *convert.Result, runErr error, started time.Time) {
	if s.cfg.History == nil {
		return
	}
	run := history.Run{Op: op.String(), Input: input, StartedAt: started, FinishedAt: time.Now()}
	if runErr != nil {
		run.Error = runErr.Error()
	} else {
		for _, f := range res.Files {
			run.Outputs = append(run.Outputs, filepath.Base(f))
		}
	}
	if _, err := s.cfg.History.Record(ctx, run); err != nil {
		fmt.Fprintf(s.cfg.Log, "server: %v\n", err)
	}
}

func (s *Server) sendMixed(w http.ResponseWriter, r *http.Request, files []string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, "Could not read a converted document.")
			return
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Type", markdownType)
		h.Set("Content-Disposition", attachment(filepath.Base(path)))
		pw, err := mw.CreatePart(h)
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, "Could not assemble the response.")
			return
		}
		pw.Write(data) //nolint:errcheck // bytes.Buffer writes do not fail
	}
	if err := mw.Close(); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Could not assemble the response.")
		return
	}
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	w.Write(body.Bytes()) //nolint:errcheck // client gone
}

func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Could not read the converted test suite.")
		return
	}
	sendBytes(w, data, contentType, filepath.Base(path))
}

func sendBytes(w http.ResponseWriter, data []byte, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(name))
	w.Write(data) //nolint:errcheck // client gone
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// save copies an uploaded part into dir under its own base name.
func save(dir string, fh *multipart.FileHeader) (string, error) {
	name := filepath.Base(fh.Filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", errBadFileName, fh.Filename)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("duplicate attachment file name %q", name)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("reading attachment %s: %w", name, err)
	}
	defer src.Close()
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storing attachment %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("storing attachment %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("storing attachment %s: %w", name, err)
	}
	return path, nil
}

func readPart(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("reading attachment %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading attachment %s: %w", fh.Filename, err)
	}
	return string(data), nil
}
