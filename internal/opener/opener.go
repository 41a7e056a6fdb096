package opener

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/labstack/gommon/log"
)

// System opens URLs in the desktop's default browser.
type System struct {
	logger *log.Logger
	// command builds the platform launcher; replaced in tests.
	command func(ctx context.Context, rawURL string) *exec.Cmd
}

func NewSystem(logger *log.Logger) *System {
	return &System{logger: logger, command: launcher}
}

func launcher(ctx context.Context, rawURL string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", rawURL)
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return exec.CommandContext(ctx, "xdg-open", rawURL)
	}
}

// Open starts the browser and returns without waiting for it.
func (s *System) Open(ctx context.Context, rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	cmd := s.command(context.WithoutCancel(ctx), rawURL)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			s.logger.Warnf("browser exited: %v", err)
		}
	}()
	return nil
}

// Page leaves opening to the browser page, which reads payment_url from the outcome.
type Page struct {
	logger *log.Logger
}

func NewPage(logger *log.Logger) *Page {
	return &Page{logger: logger}
}

func (p *Page) Open(ctx context.Context, rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	p.logger.Infof("payment page handed to browser: %s", rawURL)
	return nil
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse payment url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: not an http(s) url", rawURL)
	}
	return nil
}
