// Command nlsrd runs the link-state routing daemon core: it loads
// configuration, wires the LSDB/NPT/FIB projector/sync handler
// together, and runs the event loop until terminated.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ndn-lsr/nlsr/internal/config"
	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/router"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "nlsrd",
	Short: "Link-state routing daemon core for a Named Data Network",
	Args:  cobra.NoArgs,
	Run:   run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "/etc/ndn/nlsr.yml", "path to configuration file")
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %+v\n", err)
		os.Exit(1)
	}
	if err := cfg.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %+v\n", err)
		os.Exit(1)
	}

	seqPath := cfg.SequenceFile()
	if !filepath.IsAbs(seqPath) {
		seqPath = filepath.Join(filepath.Dir(configPath), seqPath)
	}

	rtr, err := router.New(cfg, &noopForwarder{}, &noopFetcher{}, seqPath)
	if err != nil {
		// SequenceFileIO and similar startup failures are the one case
		// spec §7 calls for a non-zero daemon exit.
		fmt.Fprintf(os.Stderr, "failed to start router: %+v\n", err)
		os.Exit(1)
	}
	defer rtr.Stop()

	// A router always originates its own router name as a reachable
	// prefix — that much is locally known, not discovered over the
	// network. Adjacency up/down instead arrives from the hello/
	// liveness detector named as an external collaborator in spec §1;
	// a full build feeds that subsystem's events to rtr.AddAdjacency/
	// RemoveAdjacency the same way it feeds application name-prefix
	// registrations to rtr.AddNamePrefix/RemoveNamePrefix.
	rtr.AddNamePrefix(cfg.RouterName(), false)

	log.Info(rtr, "Starting router", "routerName", cfg.RouterName().String())
	rtr.ScheduleRecompute()
	rtr.Start()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
