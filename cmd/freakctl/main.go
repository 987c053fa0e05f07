// Command freakctl is the host-side controller for a GPS-disciplined
// LMK05318b clock generator: it plans output frequencies, pushes the
// resulting register writes to the device over a serial link, and saves
// the result (plus any GPS receiver configuration) to the device's flash.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rcls/gpsfreak/internal/config"
	"github.com/rcls/gpsfreak/internal/logging"
	"github.com/spf13/pflag"
)

func main() {
	var deviceFlag = pflag.StringP("device", "D", "", "Serial device to talk to the instrument on (overrides the config file).")
	var configFile = pflag.StringP("config", "c", "", "Device profile (YAML) naming the reference, PLL1 PFD, and drive presets.")
	var verbose = pflag.CountP("verbose", "v", "Increase log verbosity; repeat for debug output.")
	var quiet = pflag.CountP("quiet", "q", "Suppress all but error-level log output.")
	var timeout = pflag.DurationP("timeout", "t", 5*time.Second, "Per-request serial timeout.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - plan and push GPS-disciplined clock configurations to an LMK05318b instrument.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  plan  <freq> [freq...]   Compute and print a plan for up to 6 output frequencies, without touching the device.\n")
		fmt.Fprintf(os.Stderr, "  freq  <freq> [freq...]   Plan and push a configuration to the device's LMK registers.\n")
		fmt.Fprintf(os.Stderr, "  save  [-g]               Commit the device's live LMK (and, with -g, GPS) configuration to flash.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	logging.Init(*verbose, *quiet)

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	var profile config.Profile
	if *configFile != "" {
		var err error
		profile, err = config.Load(*configFile)
		if err != nil {
			logging.L.Fatal("loading config", "err", err)
		}
	}
	device := *deviceFlag
	if device == "" {
		device = profile.SerialDevice
	}
	if device == "" && args[0] != "plan" {
		found, err := autoDetectDevice()
		if err != nil {
			logging.L.Fatal("no device given", "err", err)
		}
		logging.L.Info("auto-detected serial device", "device", found)
		device = found
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var err error
	switch args[0] {
	case "plan":
		err = runPlan(profile, args[1:])
	case "freq":
		err = runFreq(ctx, device, *timeout, profile, args[1:])
	case "save":
		err = runSave(ctx, device, *timeout, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", os.Args[0], args[0])
		pflag.Usage()
		os.Exit(1)
	}
	if err != nil {
		logging.L.Fatal(args[0], "err", err)
	}
}
