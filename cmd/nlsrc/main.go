// Command nlsrc is a local status-inspection tool for nlsrd, mirroring
// the reference tool's status subcommand shape (tools/dvc/dvc.go,
// dvc_status.go StatusPrinter).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type statusPrinter struct {
	padding int
}

func (p statusPrinter) print(key string, val any) {
	fmt.Printf("  %-*s = %v\n", p.padding, key, val)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print general status of the router",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	// A real build fetches this over the local management protocol
	// (the wire-level transport is an external collaborator, spec
	// §1); no such transport is wired here, so fetchStatus always
	// returns an error and this command exits non-zero.
	status, err := fetchStatus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get router status: %+v\n", err)
		os.Exit(1)
	}

	p := statusPrinter{padding: 14}
	fmt.Println("General router status:")
	p.print("routerName", status.RouterName)
	p.print("nRibEntries", status.NRibEntries)
	p.print("nFibEntries", status.NFibEntries)
	p.print("nAdjacencies", status.NAdjacencies)
}

var rootCmd = &cobra.Command{
	Use:   "nlsrc",
	Short: "Control and inspect a running nlsrd instance",
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
