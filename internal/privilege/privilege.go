// Package privilege resolves the unprivileged runtime account and switches
// to it. De-escalation is an explicit configuration choice, never inferred
// from the environment.
package privilege

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"
)

type Account struct {
	Name string
	Uid  int
	Gid  int
}

func Lookup(name string) (Account, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return Account{}, fmt.Errorf("failed to look up account %q: %w", name, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Account{}, fmt.Errorf("non-numeric uid %q for account %q", u.Uid, name)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return Account{}, fmt.Errorf("non-numeric gid %q for account %q", u.Gid, name)
	}

	return Account{Name: name, Uid: uid, Gid: gid}, nil
}

// Credential is the form worker processes are spawned with.
func (a Account) Credential() *syscall.Credential {
	return &syscall.Credential{
		Uid: uint32(a.Uid),
		Gid: uint32(a.Gid),
	}
}

// Drop switches the current process to the account. The group must be
// changed first; after setuid the process can no longer call setgid.
func Drop(a Account) error {
	if os.Getuid() == a.Uid {
		return nil
	}
	if err := syscall.Setgid(a.Gid); err != nil {
		return fmt.Errorf("failed to setgid to %d: %w", a.Gid, err)
	}
	if err := syscall.Setuid(a.Uid); err != nil {
		return fmt.Errorf("failed to setuid to %d: %w", a.Uid, err)
	}
	return nil
}

func IsRoot() bool {
	return os.Geteuid() == 0
}
