package util

import (
	"os"
)

// HomeEnv overrides the directory the default configuration lives under.
const HomeEnv = "KTAUDIT_HOME"

// UserHome returns the base directory for ktaudit state: $KTAUDIT_HOME when
// set, else the user's home directory. $HOME and %USERPROFILE% are tried
// when os.UserHomeDir fails, then the working directory.
func UserHome() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return homeDir
	}
	for _, env := range []string{"HOME", "USERPROFILE"} {
		if dir := os.Getenv(env); dir != "" {
			log.WithError(err).WithField("env", env).Warn("os.UserHomeDir failed, using environment")
			return dir
		}
	}
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		panic("ktaudit: no home directory and no working directory; set " + HomeEnv)
	}
	log.WithError(err).WithField("dir", wd).Warn("No home directory, using working directory")
	return wd
}
