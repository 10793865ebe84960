//go:build darwin

package vault

import "golang.org/x/sys/unix"

// platformMachineID reads the hardware UUID exposed by the kernel.
func platformMachineID() string {
	id, err := unix.Sysctl("kern.uuid")
	if err != nil {
		return ""
	}
	return id
}
