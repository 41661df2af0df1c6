package agent

import (
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Suspend programs the RTC wake timer and enters suspend-to-RAM via rtcwake.
// It does not return: after resume the process exits and the service manager
// starts the next cycle at Init. A failed rtcwake falls back to exiting
// after the interval so the cadence is preserved on hardware without an RTC.
func Suspend(logger *slog.Logger, d time.Duration) {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	cmd := exec.Command("rtcwake", "-m", "mem", "-s", strconv.Itoa(secs))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		logger.Error("rtcwake failed, sleeping in-process", "error", err)
		time.Sleep(d)
	}
	os.Exit(0)
}
