package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment passed to extensions.
const (
	EnvConfig       = "FINVAULT_CONFIG"
	EnvDatabasePath = "FINVAULT_DATABASE_PATH"
	EnvVerbose      = "FINVAULT_VERBOSE"
)

// ExtensionPrefix is the prefix of the executables run as fvl subcommands.
const ExtensionPrefix = "fvl-"

// extensionEnv returns the environment of an extension: the current one plus
// the global flags.
func extensionEnv() []string {
	env := os.Environ()
	if *configFile != "" {
		env = append(env, EnvConfig+"="+*configFile)
	}
	if *databasePath != "" {
		env = append(env, EnvDatabasePath+"="+*databasePath)
	}
	return append(env, EnvVerbose+"="+strconv.FormatBool(*Verbose))
}

// RunExtension attempts to find and execute an external fvl-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv()

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
