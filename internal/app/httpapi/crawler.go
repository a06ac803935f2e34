package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pantrylab/recipehub/internal/app/services/crawler"
)

type crawlerHandler struct {
	svc *crawler.Service
}

// NewCrawlerHandler returns the crawl service router.
func NewCrawlerHandler(svc *crawler.Service) http.Handler {
	r := newRouter()
	(&crawlerHandler{svc: svc}).routes(r)
	return r
}

func (h *crawlerHandler) routes(r *mux.Router) {
	r.HandleFunc("/crawl/domains", h.addDomain).Methods(http.MethodPost)
	r.HandleFunc("/crawl/domains", h.listDomains).Methods(http.MethodGet)
	r.HandleFunc("/crawl/pages", h.addPage).Methods(http.MethodPost)
	r.HandleFunc("/crawl/pages", h.listPages).Methods(http.MethodGet)
	r.HandleFunc("/crawl/pages/detail", h.pageDetail).Methods(http.MethodGet)
	r.HandleFunc("/crawl/pages/history", h.pageHistory).Methods(http.MethodGet)
	r.HandleFunc("/crawl/stats", h.stats).Methods(http.MethodGet)
}

func (h *crawlerHandler) addDomain(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Domain string `json:"domain"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dom, created, err := h.svc.AddDomain(r.Context(), payload.Domain)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, createdStatus(created), dom)
}

func (h *crawlerHandler) listDomains(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	perPage, err := queryInt(r, "per_page", 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	domains, err := h.svc.ListDomains(r.Context(), page, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, domains)
}

func (h *crawlerHandler) addPage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, created, err := h.svc.EnqueuePage(r.Context(), payload.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, createdStatus(created), page)
}

func (h *crawlerHandler) listPages(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	domain := r.URL.Query().Get("domain")

	switch {
	case domain != "":
		pages, err := h.svc.PagesByDomain(r.Context(), domain)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, pages)
	case status != "":
		pages, err := h.svc.PagesByStatus(r.Context(), status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, pages)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("status or domain query parameter required"))
	}
}

func (h *crawlerHandler) pageDetail(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("url query parameter required"))
		return
	}

	detail, err := h.svc.PageDetail(r.Context(), url)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *crawlerHandler) pageHistory(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("url query parameter required"))
		return
	}

	history, err := h.svc.History(r.Context(), url)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *crawlerHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
