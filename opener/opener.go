package opener

import (
	"context"
	"errors"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrEmptyURL is returned when there is nothing to open.
var ErrEmptyURL = errors.New("opener: empty url")

// RedirectOpener hands a URL to the platform, typically a browser. Open must
// not wait for the user to finish interacting with the page.
type RedirectOpener interface {
	Open(ctx context.Context, u *url.URL) error
}

// Func adapts a plain function into a [RedirectOpener].
type Func func(ctx context.Context, u *url.URL) error

// Open calls f.
func (f Func) Open(ctx context.Context, u *url.URL) error {
	return f(ctx, u)
}

// Browser launches the system default browser.
type Browser struct {
	goos    string
	command func(ctx context.Context, name string, args ...string) starter
}

type starter interface {
	Start() error
}

// NewBrowser returns an opener for the running operating system.
func NewBrowser() *Browser {
	return &Browser{goos: runtime.GOOS}
}

// Open starts the platform URL handler and returns without waiting for it.
func (b *Browser) Open(ctx context.Context, u *url.URL) error {
	if u == nil || u.String() == "" {
		return ErrEmptyURL
	}
	name, args := b.commandLine(u.String())
	return b.start(ctx, name, args...)
}

func (b *Browser) commandLine(target string) (string, []string) {
	goos := b.goos
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

func (b *Browser) start(ctx context.Context, name string, args ...string) error {
	if b.command != nil {
		return b.command(ctx, name, args...).Start()
	}
	// The browser outlives the call, so the command is not bound to ctx.
	return exec.Command(name, args...).Start()
}
