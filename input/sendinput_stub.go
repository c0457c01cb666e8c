//go:build !windows

package input

func platformPress(string) error {
	return errNoPlatformInjector
}

func platformRelease(string) error {
	return errNoPlatformInjector
}

func platformIsPressed(string) (bool, error) {
	return false, errNoPlatformInjector
}
