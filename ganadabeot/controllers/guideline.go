// ganadabeot/controllers/guideline.go
package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"ganadabeot/ganadabeot/sources/storage"
	"ganadabeot/ganadabeot/utils/logging"

	"go.uber.org/zap"
)

const DefaultGuidelineFilename = "writing_guideline.pdf"

type GuidelineController struct {
	source   storage.GuidelineSource
	filename string
}

// NewGuidelineController serves source. filename is the name shown on the
// download link.
func NewGuidelineController(source storage.GuidelineSource, filename string) *GuidelineController {
	if source == nil {
		source = storage.NoGuidelineSource{}
	}
	if filename == "" {
		filename = DefaultGuidelineFilename
	}
	return &GuidelineController{source: source, filename: filename}
}

func (c *GuidelineController) Filename() string {
	return c.filename
}

// Download serves the guideline document as an attachment.
func (c *GuidelineController) Download(w http.ResponseWriter, r *http.Request) {
	doc, err := c.source.Fetch(r.Context())
	if errors.Is(err, storage.ErrGuidelineNotFound) {
		http.Error(w, "가이드라인 문서를 찾을 수 없습니다.", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.ErrorLogger.Error("guideline fetch failed", zap.Error(err))
		http.Error(w, "가이드라인 문서를 불러오지 못했습니다.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}
