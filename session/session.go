// Package session owns the headless browser lifecycle: one lazily started
// engine, one persistent browsing context bound to an on-disk profile, and
// the page handles issued against it.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"golang.org/x/time/rate"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
)

// defaultUserAgent is the fixed identity presented by every session unless
// the config overrides it.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

// identityJS patches the trivial automation tells before any page script
// runs: no webdriver flag, a non-empty plugin list, populated languages.
const identityJS = `
	Object.defineProperty(navigator, 'webdriver', {get: () => false});
	window.navigator.chrome = {runtime: {}};
	Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
	Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
`

type state int

const (
	stateUninitialized state = iota
	stateEngineReady         // browser binary resolved
	stateContextOpen         // browser process running, profile attached
)

// Manager owns a single browser engine and its persistent context, and
// issues isolated page handles against it. It is safe for concurrent use.
//
// Callers must guarantee Close runs on every exit path of the enclosing
// search; releasing the last open page also tears the context down.
type Manager struct {
	cfg     *config.Config
	limiter *rate.Limiter

	mu       sync.Mutex
	state    state
	bin      string
	launcher *launcher.Launcher
	browser  *rod.Browser
	issued   map[*rod.Page]struct{}

	// closePage closes one page handle; swapped out in tests.
	closePage func(*rod.Page) error
}

// NewManager creates a Manager. The engine is not started until the first
// page is requested.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Limit(cfg.NavigationsPerSecond), 1),
		issued:    make(map[*rod.Page]struct{}),
		closePage: func(p *rod.Page) error { return p.Close() },
	}
}

// Limiter returns the shared navigation rate limiter for this session.
func (m *Manager) Limiter() *rate.Limiter {
	return m.limiter
}

// EnsureReady starts the engine and opens the persistent context if either
// is not already up. Calling it again when ready is a no-op.
func (m *Manager) EnsureReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureReadyLocked()
}

func (m *Manager) ensureReadyLocked() error {
	if err := m.startEngineLocked(); err != nil {
		return err
	}
	return m.openContextLocked()
}

// startEngineLocked resolves the browser binary. If none is installed it
// self-heals once by downloading a managed browser build.
func (m *Manager) startEngineLocked() error {
	if m.state >= stateEngineReady {
		return nil
	}

	bin := m.cfg.BrowserBin
	if bin == "" {
		if found, ok := launcher.LookPath(); ok {
			bin = found
		}
	}
	if bin == "" {
		slog.Info("no browser binary found, downloading managed build")
		downloaded, err := launcher.NewBrowser().Get()
		if err != nil {
			return models.NewSessionError("failed to install browser runtime", err)
		}
		bin = downloaded
	}

	m.bin = bin
	m.state = stateEngineReady
	slog.Debug("browser engine ready", "bin", bin)
	return nil
}

// openContextLocked launches the browser with the persistent profile and
// connects to it. A failed launch is retried once after re-fetching the
// managed browser build, in case the local binary is broken.
func (m *Manager) openContextLocked() error {
	if m.state >= stateContextOpen {
		return nil
	}

	profileDir, err := m.profileDir()
	if err != nil {
		return models.NewSessionError("failed to prepare profile directory", err)
	}

	l, controlURL, err := m.launch(m.bin, profileDir)
	if err != nil {
		slog.Warn("browser launch failed, retrying with managed build", "error", err)
		bin, getErr := launcher.NewBrowser().Get()
		if getErr != nil {
			return models.NewSessionError("failed to launch browser", err)
		}
		m.bin = bin
		if l, controlURL, err = m.launch(bin, profileDir); err != nil {
			return models.NewSessionError("failed to launch browser", err)
		}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return models.NewSessionError("failed to connect to browser", err)
	}

	m.launcher = l
	m.browser = browser
	m.issued = make(map[*rod.Page]struct{})
	m.state = stateContextOpen
	slog.Info("browser context opened", "controlURL", controlURL, "profile", profileDir)
	return nil
}

func (m *Manager) launch(bin, profileDir string) (*launcher.Launcher, string, error) {
	l := launcher.New().
		Bin(bin).
		Headless(m.cfg.Headless).
		NoSandbox(m.cfg.NoSandbox).
		UserDataDir(profileDir)

	if m.cfg.Proxy != "" {
		l = l.Proxy(m.cfg.Proxy)
	}

	l.Set(flags.Flag("user-agent"), m.userAgent())

	// Automation tells removed at the process level.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, "", err
	}
	return l, controlURL, nil
}

func (m *Manager) userAgent() string {
	if m.cfg.UserAgent != "" {
		return m.cfg.UserAgent
	}
	return defaultUserAgent
}

func (m *Manager) profileDir() (string, error) {
	if m.cfg.ProfileDir != "" {
		return m.cfg.ProfileDir, os.MkdirAll(m.cfg.ProfileDir, 0o755)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cacheDir, "websearch", "profile")
	return dir, os.MkdirAll(dir, 0o755)
}

// AcquirePages returns exactly n fresh page handles with a fixed 1920x1080
// viewport and the identity scripts installed. On any failure the pages
// created so far are closed before the error is returned.
func (m *Manager) AcquirePages(n int) ([]*rod.Page, error) {
	if n <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	pages := make([]*rod.Page, 0, n)
	for i := 0; i < n; i++ {
		page, err := m.newPageLocked()
		if err != nil {
			for _, p := range pages {
				m.closePageLocked(p)
			}
			return nil, models.NewSessionError(
				fmt.Sprintf("failed to create page %d of %d", i+1, n), err)
		}
		pages = append(pages, page)
	}

	for _, page := range pages {
		m.issued[page] = struct{}{}
	}
	return pages, nil
}

func (m *Manager) newPageLocked() (*rod.Page, error) {
	page, err := m.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	// Identity scripts must be installed before the first navigation.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without it", "error", err)
	}
	if _, err := page.EvalOnNewDocument(identityJS); err != nil {
		slog.Warn("identity patch injection failed", "error", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		m.closePageLocked(page)
		return nil, err
	}

	if m.cfg.Language != "" {
		err := proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Accept-Language": gson.New(m.cfg.Language + ",en;q=0.8"),
			},
		}.Call(page)
		if err != nil {
			slog.Warn("failed to set Accept-Language header", "error", err)
		}
	}

	return page, nil
}

// ReleasePage closes the handle unless it was already released. When the
// last open page under the context is released, the context itself is torn
// down. Close failures are logged and swallowed; this runs in cleanup
// paths.
func (m *Manager) ReleasePage(page *rod.Page) {
	if page == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.issued[page]; !ok {
		return
	}
	delete(m.issued, page)
	m.closePageLocked(page)

	if len(m.issued) == 0 && m.state == stateContextOpen {
		slog.Debug("last page released, closing context")
		m.closeContextLocked()
	}
}

func (m *Manager) closePageLocked(page *rod.Page) {
	if err := m.closePage(page); err != nil {
		slog.Warn("failed to close page", "error", err)
	}
}

// Close tears down the context and stops the engine, each independently
// guarded, and resets the manager so it can be reused.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeContextLocked()
	m.bin = ""
	m.state = stateUninitialized
}

// closeContextLocked closes the browser connection and kills the launched
// process. A failure in one step does not prevent the other.
func (m *Manager) closeContextLocked() {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			slog.Warn("failed to close browser", "error", err)
		}
		m.browser = nil
	}
	if m.launcher != nil {
		// Kill only; Cleanup would remove the persistent profile directory.
		m.launcher.Kill()
		m.launcher = nil
	}
	m.issued = make(map[*rod.Page]struct{})
	if m.state == stateContextOpen {
		m.state = stateEngineReady
	}
}
