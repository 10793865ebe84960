package vault

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

// MachineKey derives the vault key for the current host and OS user.
//
// The key only protects against casual inspection of the vault file. Anyone
// able to run code as the same user on the same machine can rebuild it.
func MachineKey() ([]byte, error) {
	return DeriveKey(machineID(), userSalt())
}

// machineID returns a semi-stable host identifier, falling back to the
// hostname when the platform source is unavailable.
func machineID() string {
	if id := platformMachineID(); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil {
		return "ccprof-unknown-host"
	}
	return host
}

func userSalt() string {
	u, err := user.Current()
	if err != nil {
		return fmt.Sprintf("ccprof:%d", os.Getuid())
	}
	return fmt.Sprintf("ccprof:%s:%s", u.Username, u.Uid)
}

func readFirstID(paths ...string) string {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return ""
}
