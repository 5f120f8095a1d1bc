package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
	"github.com/wabisaby/cloudplatform-dashboard/internal/git"
	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
)

var (
	ErrSiteNotFound      = errors.New("site not found")
	ErrSiteBusy          = errors.New("site is busy")
	ErrInvalidTransition = errors.New("action not allowed in current status")
	ErrMissingField      = errors.New("name and repository URL are required")
	ErrRegistryClosed    = errors.New("site registry is closed")
)

const subscriberBuffer = 64

// Delays holds the simulated duration of each transition.
type Delays struct {
	Deploy   time.Duration
	Redeploy time.Duration
	Stop     time.Duration
	Create   time.Duration
}

// DefaultDelays returns the delays used by the dashboard.
func DefaultDelays() Delays {
	return Delays{
		Deploy:   1400 * time.Millisecond,
		Redeploy: 1600 * time.Millisecond,
		Stop:     800 * time.Millisecond,
		Create:   1800 * time.Millisecond,
	}
}

// DelaysFromConfig converts the simulation settings.
func DelaysFromConfig(c config.SimulationConfig) Delays {
	return Delays{
		Deploy:   c.DeployDelay,
		Redeploy: c.RedeployDelay,
		Stop:     c.StopDelay,
		Create:   c.CreateDelay,
	}
}

// RegistryOptions configures a SiteRegistry. Zero values fall back to defaults;
// a non-nil Delays is used as given, zero durations included.
type RegistryOptions struct {
	Delays       *Delays
	HostedDomain string
	Scheduler    Scheduler
	Now          func() time.Time
}

// NewSite is the input of the "host new site" form.
type NewSite struct {
	Name           string `json:"name"`
	RepositoryURL  string `json:"repositoryUrl"`
	ContainerImage string `json:"containerImage"`
	BuildCommand   string `json:"buildCommand"`
}

// siteEntry pairs a site with the bookkeeping for its pending transition.
type siteEntry struct {
	site  model.Site
	gen   uint64
	timer Timer
}

// SiteRegistry holds the in-memory sites and drives their simulated transitions
type SiteRegistry struct {
	mu        sync.RWMutex
	sites     []*siteEntry // newest first
	delays    Delays
	domain    string
	scheduler Scheduler
	now       func() time.Time
	closed    bool

	subMu       sync.Mutex
	subscribers map[chan model.Event]struct{}
}

// NewSiteRegistry creates an empty registry
func NewSiteRegistry(opts RegistryOptions) *SiteRegistry {
	delays := DefaultDelays()
	if opts.Delays != nil {
		delays = *opts.Delays
	}
	if opts.HostedDomain == "" {
		opts.HostedDomain = config.DefaultHostedDomain
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SiteRegistry{
		delays:      delays,
		domain:      opts.HostedDomain,
		scheduler:   opts.Scheduler,
		now:         opts.Now,
		subscribers: make(map[chan model.Event]struct{}),
	}
}

// ExampleSite returns the site shown on a fresh dashboard.
func ExampleSite() model.Site {
	return model.Site{
		Name:           "example-cloudplatform-app",
		RepositoryURL:  "https://github.com/your-org/your-repo",
		HostedURL:      "https://example-cloudplatform-app.vercel.app",
		Status:         model.SiteRunning,
		ContainerImage: config.DefaultContainerImage,
		BuildCommand:   DefaultBuildCommand(config.DefaultContainerImage),
	}
}

// Restore appends an idle site to the end of the registry as-is. A missing ID
// is generated and busy sites are rejected.
func (r *SiteRegistry) Restore(site model.Site) (model.Site, error) {
	switch site.Status {
	case "":
		site.Status = model.SiteStopped
	case model.SiteStopped, model.SiteRunning:
	default:
		return model.Site{}, fmt.Errorf("restore %s: %w", site.Name, ErrSiteBusy)
	}
	if site.Busy {
		return model.Site{}, fmt.Errorf("restore %s: %w", site.Name, ErrSiteBusy)
	}
	if site.Name == "" || site.RepositoryURL == "" {
		return model.Site{}, ErrMissingField
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return model.Site{}, ErrRegistryClosed
	}

	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	if site.RepositorySlug == "" {
		site.RepositorySlug = git.RepositorySlug(site.RepositoryURL)
	}
	now := r.now()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = now
	}
	site.UpdatedAt = now
	r.sites = append(r.sites, &siteEntry{site: site})
	return site, nil
}

// List returns a snapshot of all sites, newest first
func (r *SiteRegistry) List() []model.Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// Filter returns the sites matching query and filter, newest first
func (r *SiteRegistry) Filter(query string, filter model.StatusFilter) []model.Site {
	return FilterSites(r.List(), query, filter)
}

// Counts tallies the full, unfiltered registry
func (r *SiteRegistry) Counts() model.Counts {
	return CountSites(r.List())
}

// Get returns the site with the given ID
func (r *SiteRegistry) Get(id string) (model.Site, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e := r.find(id); e != nil {
		return e.site, true
	}
	return model.Site{}, false
}

// FindByName returns the most recently added site with the given name
func (r *SiteRegistry) FindByName(name string) (model.Site, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.sites {
		if e.site.Name == name {
			return e.site, true
		}
	}
	return model.Site{}, false
}

// Lookup resolves ref as a site ID first, then as a site name.
func (r *SiteRegistry) Lookup(ref string) (model.Site, bool) {
	if s, ok := r.Get(ref); ok {
		return s, true
	}
	return r.FindByName(ref)
}

// Suggest returns the existing site name closest to name, if any is close enough.
func (r *SiteRegistry) Suggest(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(name)
	best, bestDist := "", -1
	for _, e := range r.sites {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(e.site.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = e.site.Name, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return "", false
	}
	return best, true
}

// SubmitNewSite inserts a site at the front of the registry and starts its
// first deployment. Name and repository URL are required; the build command
// is stored as given.
func (r *SiteRegistry) SubmitNewSite(in NewSite) (model.Site, error) {
	if in.Name == "" || in.RepositoryURL == "" {
		return model.Site{}, ErrMissingField
	}
	if in.ContainerImage == "" {
		in.ContainerImage = config.DefaultContainerImage
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return model.Site{}, ErrRegistryClosed
	}

	now := r.now()
	e := &siteEntry{site: model.Site{
		ID:             uuid.NewString(),
		Name:           in.Name,
		RepositoryURL:  in.RepositoryURL,
		RepositorySlug: git.RepositorySlug(in.RepositoryURL),
		Status:         model.SiteDeploying,
		ContainerImage: in.ContainerImage,
		BuildCommand:   in.BuildCommand,
		Busy:           true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}}
	r.sites = append([]*siteEntry{e}, r.sites...)

	r.publish(model.EventCreated, e.site)
	r.schedule(e, r.delays.Create, model.SiteRunning, true)
	log.Printf("Hosting new site %s from %s", e.site.Name, e.site.RepositoryURL)
	return e.site, nil
}

// RequestDeploy deploys a stopped site; once done it runs under a fresh hosted URL
func (r *SiteRegistry) RequestDeploy(id string) (model.Site, error) {
	return r.begin(id, model.SiteStopped, model.SiteRunning, r.delays.Deploy, true)
}

// RequestRedeploy rebuilds a running site; its hosted URL is kept
func (r *SiteRegistry) RequestRedeploy(id string) (model.Site, error) {
	return r.begin(id, model.SiteRunning, model.SiteRunning, r.delays.Redeploy, false)
}

// RequestStop stops a running site; its hosted URL is kept
func (r *SiteRegistry) RequestStop(id string) (model.Site, error) {
	return r.begin(id, model.SiteRunning, model.SiteStopped, r.delays.Stop, false)
}

// RequestDelete removes a stopped site immediately
func (r *SiteRegistry) RequestDelete(id string) (model.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return model.Site{}, ErrRegistryClosed
	}

	idx := r.index(id)
	if idx < 0 {
		return model.Site{}, ErrSiteNotFound
	}
	e := r.sites[idx]
	if e.site.Busy {
		return model.Site{}, ErrSiteBusy
	}
	if e.site.Status != model.SiteStopped {
		return model.Site{}, fmt.Errorf("delete %s (%s): %w", e.site.Name, e.site.Status, ErrInvalidTransition)
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	r.sites = append(r.sites[:idx], r.sites[idx+1:]...)
	r.publish(model.EventDeleted, e.site)
	log.Printf("Deleted site %s", e.site.Name)
	return e.site, nil
}

// Subscribe returns a channel receiving every registry event and a function
// that unsubscribes it. Events are dropped for subscribers that fall behind.
func (r *SiteRegistry) Subscribe() (<-chan model.Event, func()) {
	ch := make(chan model.Event, subscriberBuffer)

	r.subMu.Lock()
	if r.subscribers == nil {
		// registry closed
		r.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	r.subscribers[ch] = struct{}{}
	r.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			defer r.subMu.Unlock()
			if _, ok := r.subscribers[ch]; ok {
				delete(r.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Close stops pending transitions and closes all subscriber channels.
func (r *SiteRegistry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, e := range r.sites {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
	r.mu.Unlock()

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for ch := range r.subscribers {
		close(ch)
	}
	r.subscribers = nil
}

// begin starts a timed transition from status from to status next.
func (r *SiteRegistry) begin(id string, from, next model.SiteStatus, delay time.Duration, setURL bool) (model.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return model.Site{}, ErrRegistryClosed
	}

	e := r.find(id)
	if e == nil {
		return model.Site{}, ErrSiteNotFound
	}
	if e.site.Busy {
		return model.Site{}, ErrSiteBusy
	}
	if e.site.Status != from {
		return model.Site{}, fmt.Errorf("%s is %s: %w", e.site.Name, e.site.Status, ErrInvalidTransition)
	}

	e.site.Status = model.SiteDeploying
	e.site.Busy = true
	e.site.UpdatedAt = r.now()

	r.publish(model.EventTransitionStarted, e.site)
	r.schedule(e, delay, next, setURL)
	log.Printf("Site %s: %s -> %s (%s)", e.site.Name, from, next, delay)
	return e.site, nil
}

// schedule arms the completion of e's current transition. Must hold r.mu.
func (r *SiteRegistry) schedule(e *siteEntry, delay time.Duration, next model.SiteStatus, setURL bool) {
	e.gen++
	gen, id := e.gen, e.site.ID
	e.timer = r.scheduler.AfterFunc(delay, func() {
		r.complete(id, gen, next, setURL)
	})
}

// complete applies a finished transition unless the site was removed or a
// newer transition superseded it.
func (r *SiteRegistry) complete(id string, gen uint64, next model.SiteStatus, setURL bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	e := r.find(id)
	if e == nil || e.gen != gen {
		stale := model.Site{ID: id}
		if e != nil {
			stale = e.site
		}
		r.publish(model.EventTransitionDiscarded, stale)
		return
	}

	e.site.Status = next
	e.site.Busy = false
	if setURL {
		e.site.HostedURL = r.hostedURL(e.site.Name)
	}
	e.site.UpdatedAt = r.now()
	e.timer = nil

	r.publish(model.EventTransitionCompleted, e.site)
	log.Printf("Site %s is %s", e.site.Name, next)
}

func (r *SiteRegistry) hostedURL(name string) string {
	return fmt.Sprintf("https://%s.%s", name, r.domain)
}

// publish fans an event out without blocking. Must hold r.mu.
func (r *SiteRegistry) publish(t model.EventType, s model.Site) {
	ev := model.Event{
		Type:     t,
		SiteID:   s.ID,
		SiteName: s.Name,
		Status:   s.Status,
		At:       r.now(),
	}

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (r *SiteRegistry) find(id string) *siteEntry {
	if i := r.index(id); i >= 0 {
		return r.sites[i]
	}
	return nil
}

func (r *SiteRegistry) index(id string) int {
	for i, e := range r.sites {
		if e.site.ID == id {
			return i
		}
	}
	return -1
}

func (r *SiteRegistry) snapshot() []model.Site {
	out := make([]model.Site, len(r.sites))
	for i, e := range r.sites {
		out[i] = e.site
	}
	return out
}
