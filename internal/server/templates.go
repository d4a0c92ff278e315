package server

import (
	"bytes"
	"net/http"

	"github.com/papapumpkin/usecase/internal/narrative"
	"github.com/papapumpkin/usecase/internal/table"
)

func (s *Server) catalogTemplate(w http.ResponseWriter, r *http.Request) {
	s.sendTemplate(w, r, narrative.CatalogTemplate)
}

func (s *Server) scenarioSetTemplate(w http.ResponseWriter, r *http.Request) {
	s.sendTemplate(w, r, narrative.ScenarioSetTemplate)
}

func (s *Server) sendTemplate(w http.ResponseWriter, r *http.Request, name string) {
	data, err := narrative.DefaultTemplate(name)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	sendBytes(w, data, markdownType, name)
}

func (s *Server) excelTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := table.WriteDefaultTemplate(&buf); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	sendBytes(w, buf.Bytes(), xlsxType, "TestSuiteTemplate.xlsx")
}
