package util

import (
	"os"

	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

// UserHome returns the current user's home directory.
// Falls back to the $HOME, then $USERPROFILE environment variable if
// os.UserHomeDir fails. After that it uses the current working directory,
// which allows operation in containerized environments where $HOME may not be set;
// it panics only if the working directory cannot be determined either.
func UserHome() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv("HOME"); home != "" {
			log.WithError(err).Warn("os.UserHomeDir failed, falling back to $HOME")
			return home
		}
		if home := os.Getenv("USERPROFILE"); home != "" {
			log.WithError(err).Warn("os.UserHomeDir failed, falling back to USERPROFILE")
			return home
		}
		if wd, wdErr := os.Getwd(); wdErr == nil {
			log.WithError(err).Warn("os.UserHomeDir and $HOME unavailable; falling back to working directory")
			return wd
		}
		panic("go-lsrpc: unable to determine home directory; set $HOME environment variable")
	}

	return homeDir
}
