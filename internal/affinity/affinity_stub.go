//go:build !linux

package affinity

import "errors"

func setAffinityPlatform(cpu int) error {
	return errors.New("affinity: not supported on this platform")
}
