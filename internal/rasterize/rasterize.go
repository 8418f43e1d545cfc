// Package rasterize renders an HTML/CSS container snippet to a transparent
// PNG using a headless browser, grounded on andrewarrow-cutlass's
// browser.BrowserSession launch/navigate/screenshot idiom.
package rasterize

import (
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
)

// Session wraps a headless browser launch, grounded on
// browser.BrowserSession (launcher + rod.Browser + rod.Page).
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// NewSession launches a new headless browser session.
func NewSession() (*Session, error) {
	l := launcher.New().Headless(true)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("error launching browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("error connecting to browser: %w", err)
	}

	var page *rod.Page
	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "error creating page: %v\n", r)
			}
		}()
		page = browser.MustPage()
	}()

	if page == nil {
		browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create rasterizer page")
	}
	page = page.Timeout(30 * time.Second)

	return &Session{launcher: l, browser: browser, page: page}, nil
}

// Close tears down the browser session.
func (s *Session) Close() {
	if s.page != nil {
		s.page.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
}

// RenderContainer navigates to an HTML shell embedding htmlContent + css at
// exactly (width, height) with a transparent background, and returns the
// resulting PNG bytes.
func (s *Session) RenderContainer(htmlContent, cssText string, width, height int) ([]byte, error) {
	shell := buildShell(htmlContent, cssText, width, height)

	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: width, Height: height, DeviceScaleFactor: 1,
	}); err != nil {
		return nil, videoerrors.CacheIOError("rasterize:viewport", err)
	}

	transparent := 0.0
	if err := (proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{R: 0, G: 0, B: 0, A: &transparent},
	}).Call(s.page); err != nil {
		return nil, videoerrors.CacheIOError("rasterize:transparent-background", err)
	}

	if err := s.page.Navigate("data:text/html," + shell); err != nil {
		return nil, videoerrors.CacheIOError("rasterize:navigate", err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return nil, videoerrors.CacheIOError("rasterize:wait-load", err)
	}

	img, err := s.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, videoerrors.CacheIOError("rasterize:screenshot", err)
	}
	return img, nil
}

func buildShell(htmlContent, cssText string, width, height int) string {
	return fmt.Sprintf(`<!doctype html><html><head><style>
html,body{margin:0;padding:0;background:transparent;width:%dpx;height:%dpx;overflow:hidden;}
%s
</style></head><body>%s</body></html>`, width, height, cssText, htmlContent)
}
