package main

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/fentz26/tasktally/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	Long:  `Opens the task board. A background daemon is spawned first when none answers on --api.`,
	RunE:  runTUI,
}

const (
	daemonStartTimeout = 5 * time.Second
	daemonPollInterval = 250 * time.Millisecond
)

func runTUI(cmd *cobra.Command, args []string) error {
	if _, err := CheckHealth(); err != nil {
		fmt.Println("tasktally daemon not running, starting it in the background...")
		if err := spawnDaemon(); err != nil {
			return fmt.Errorf("start daemon: %w", err)
		}
	}

	if err := tui.New(apiAddr).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// spawnDaemon starts a detached "tasktally daemon" listening where --api
// points and waits for its health check to pass.
func spawnDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	daemonArgs := []string{"daemon"}
	if u, err := url.Parse(apiAddr); err == nil && u.Host != "" {
		daemonArgs = append(daemonArgs, "--listen", u.Host)
	}

	proc := exec.Command(exe, daemonArgs...)
	configureDaemonProc(proc)
	if err := proc.Start(); err != nil {
		return err
	}
	// Leave the daemon running after the TUI exits.
	if err := proc.Process.Release(); err != nil {
		return err
	}

	deadline := time.Now().Add(daemonStartTimeout)
	for time.Now().Before(deadline) {
		if _, err := CheckHealth(); err == nil {
			return nil
		}
		time.Sleep(daemonPollInterval)
	}
	return fmt.Errorf("daemon started but API not reachable at %s", apiAddr)
}
