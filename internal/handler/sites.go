package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
)

// CreateSiteRequest is the JSON body of the "host new site" form. A missing
// buildCommand is seeded from the container image; an empty one is kept.
type CreateSiteRequest struct {
	Name           string  `json:"name"`
	RepositoryURL  string  `json:"repositoryUrl"`
	ContainerImage string  `json:"containerImage"`
	BuildCommand   *string `json:"buildCommand"`
}

type SiteHandler struct {
	registry *service.SiteRegistry
}

func NewSiteHandler(registry *service.SiteRegistry) *SiteHandler {
	return &SiteHandler{registry: registry}
}

// ListSites returns the sites matching ?q= and ?status=, with counts over all sites
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	filter, ok := model.ParseStatusFilter(r.URL.Query().Get("status"))
	if !ok {
		SendError(w, fmt.Sprintf("unknown status filter %q", r.URL.Query().Get("status")), http.StatusBadRequest)
		return
	}

	SendSuccess(w, model.SiteList{
		Sites:  h.registry.Filter(r.URL.Query().Get("q"), filter),
		Counts: h.registry.Counts(),
	})
}

// GetSite returns one site by ID or name
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	site, ok := h.lookup(w, r)
	if !ok {
		return
	}
	SendSuccess(w, site)
}

// CreateSite hosts a new site and starts its first deployment
func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		SendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	image := req.ContainerImage
	if image == "" {
		image = config.DefaultContainerImage
	}
	buildCmd := service.DefaultBuildCommand(image)
	if req.BuildCommand != nil {
		buildCmd = *req.BuildCommand
	}

	site, err := h.registry.SubmitNewSite(service.NewSite{
		Name:           req.Name,
		RepositoryURL:  req.RepositoryURL,
		ContainerImage: image,
		BuildCommand:   buildCmd,
	})
	if err != nil {
		h.sendSiteError(w, err, req.Name)
		return
	}
	SendStatus(w, http.StatusCreated, site)
}

// HandleSiteAction handles site actions (deploy, redeploy, stop)
func (h *SiteHandler) HandleSiteAction(w http.ResponseWriter, r *http.Request) {
	site, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var (
		updated model.Site
		err     error
	)
	switch chi.URLParam(r, "action") {
	case "deploy":
		updated, err = h.registry.RequestDeploy(site.ID)
	case "redeploy":
		updated, err = h.registry.RequestRedeploy(site.ID)
	case "stop":
		updated, err = h.registry.RequestStop(site.ID)
	default:
		SendError(w, "Unknown action", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.sendSiteError(w, err, site.Name)
		return
	}
	SendStatus(w, http.StatusAccepted, updated)
}

// DeleteSite removes a stopped site
func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	site, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if _, err := h.registry.RequestDelete(site.ID); err != nil {
		h.sendSiteError(w, err, site.Name)
		return
	}
	SendSuccess(w, map[string]string{"message": fmt.Sprintf("Deleted %s", site.Name)})
}

// StreamEvents streams the registry activity feed as server-sent events
func (h *SiteHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, unsubscribe := h.registry.Subscribe()
	defer unsubscribe()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

// lookup resolves the {id} URL parameter, replying 404 when it matches nothing
func (h *SiteHandler) lookup(w http.ResponseWriter, r *http.Request) (model.Site, bool) {
	ref := chi.URLParam(r, "id")
	if ref == "" {
		SendError(w, "Site ID required", http.StatusBadRequest)
		return model.Site{}, false
	}
	site, ok := h.registry.Lookup(ref)
	if !ok {
		h.sendSiteError(w, service.ErrSiteNotFound, ref)
		return model.Site{}, false
	}
	return site, true
}

func (h *SiteHandler) sendSiteError(w http.ResponseWriter, err error, ref string) {
	switch {
	case errors.Is(err, service.ErrSiteNotFound):
		msg := fmt.Sprintf("site %q not found", ref)
		if name, ok := h.registry.Suggest(ref); ok {
			msg += fmt.Sprintf("; did you mean %q?", name)
		}
		SendError(w, msg, http.StatusNotFound)
	case errors.Is(err, service.ErrMissingField):
		SendError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrSiteBusy), errors.Is(err, service.ErrInvalidTransition):
		SendError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrRegistryClosed):
		SendError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		SendError(w, err.Error(), http.StatusInternalServerError)
	}
}
