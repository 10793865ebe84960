//go:build !darwin

package vault

func platformMachineID() string {
	return readFirstID("/etc/machine-id", "/var/lib/dbus/machine-id")
}
