// Package browsertest drives a real headless browser through the served
// pages and verifies the client-side behavior end to end.
package browsertest

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"stackpad/internal/config"
)

// Harness owns one browser process for the duration of a run.
type Harness struct {
	cfg     config.BrowserConfig
	logger  *zap.Logger
	browser *rod.Browser
}

func New(cfg config.BrowserConfig, logger *zap.Logger) *Harness {
	return &Harness{cfg: cfg, logger: logger}
}

// Start launches chrome and connects the control channel.
func (h *Harness) Start(ctx context.Context) error {
	url, err := launcher.New().Headless(h.cfg.Headless).Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	h.browser = browser
	return nil
}

// Close tears the browser down. Safe to call after a failed Start.
func (h *Harness) Close() error {
	if h.browser == nil {
		return nil
	}
	return h.browser.Close()
}

// Run executes the scripted click-through against a server at baseURL.
// The first failing step aborts the run.
func (h *Harness) Run(ctx context.Context, baseURL string) error {
	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"counter", h.checkCounter},
		{"todo", h.checkTodo},
		{"films", h.checkFilms},
	}
	for _, step := range steps {
		if step.name == "films" && h.cfg.SkipRemote {
			h.logger.Info("step skipped", zap.String("step", step.name))
			continue
		}
		h.logger.Info("step starting", zap.String("step", step.name))
		if err := step.fn(ctx, baseURL); err != nil {
			return fmt.Errorf("step %s: %w", step.name, err)
		}
		h.logger.Info("step passed", zap.String("step", step.name))
	}
	return nil
}

// checkCounter clicks the home page counter three times and expects the
// displayed count to follow.
func (h *Harness) checkCounter(ctx context.Context, baseURL string) error {
	page, err := h.openPage(ctx, baseURL+"/")
	if err != nil {
		return err
	}
	defer page.Close()

	button, err := page.Element("#increment")
	if err != nil {
		return fmt.Errorf("find #increment: %w", err)
	}
	for i := 0; i < 3; i++ {
		if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("click #increment: %w", err)
		}
	}

	if _, err := page.Timeout(h.cfg.GetNavigationTimeout()).ElementR("#count", `^3$`); err != nil {
		return fmt.Errorf("expected #count to read 3: %w", err)
	}
	return nil
}

// checkTodo submits a todo through the form and expects it to appear in
// the list without a page reload.
func (h *Harness) checkTodo(ctx context.Context, baseURL string) error {
	page, err := h.openPage(ctx, baseURL+"/todo")
	if err != nil {
		return err
	}
	defer page.Close()

	text := "Buy milk"
	input, err := page.Element("#todo-text")
	if err != nil {
		return fmt.Errorf("find #todo-text: %w", err)
	}
	if err := input.Input(text); err != nil {
		return fmt.Errorf("type todo text: %w", err)
	}

	submit, err := page.Element("#todo-submit")
	if err != nil {
		return fmt.Errorf("find #todo-submit: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click #todo-submit: %w", err)
	}

	if _, err := page.Timeout(h.cfg.GetNavigationTimeout()).ElementR("#todo-list li", text); err != nil {
		return fmt.Errorf("todo %q never appeared in #todo-list: %w", text, err)
	}
	return nil
}

// checkFilms expects the film listing to render at least one row.
func (h *Harness) checkFilms(ctx context.Context, baseURL string) error {
	page, err := h.openPage(ctx, baseURL+"/star-wars")
	if err != nil {
		return err
	}
	defer page.Close()

	if _, err := page.Timeout(h.cfg.GetNavigationTimeout()).Element(".film"); err != nil {
		return fmt.Errorf("no .film rows rendered: %w", err)
	}
	return nil
}

// openPage creates a page with the configured viewport, wires console
// forwarding, navigates, and waits for the load event.
func (h *Harness) openPage(ctx context.Context, url string) (*rod.Page, error) {
	page, err := h.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             h.cfg.ViewportWidth,
		Height:            h.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}).Call(page); err != nil {
		page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	go page.EachEvent(func(ev *proto.RuntimeConsoleAPICalled) {
		h.logger.Debug("browser console",
			zap.String("type", string(ev.Type)),
			zap.String("msg", stringifyConsoleArgs(ev.Args)))
	})()

	if err := page.Timeout(h.cfg.GetNavigationTimeout()).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.Timeout(h.cfg.GetNavigationTimeout()).WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	return page, nil
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}
