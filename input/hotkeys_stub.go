//go:build !windows

package input

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ListenHotkeys validates the bindings and then idles until ctx is
// done. Global hotkeys need platform support that only the windows
// build carries; elsewhere the overlay is driven from stdin alone.
func ListenHotkeys(ctx context.Context, bindings []Binding) error {
	for _, b := range bindings {
		if _, _, err := ParseHotkey(b.Spec); err != nil {
			return err
		}
	}
	if len(bindings) > 0 {
		logrus.Warnln("global hotkeys are not supported on this platform")
	}
	<-ctx.Done()
	return nil
}
