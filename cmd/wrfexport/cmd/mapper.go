package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wrfdata/wrf-exporter/internal/inject"
	"github.com/wrfdata/wrf-exporter/internal/mapper"
)

var mapperCmd = &cobra.Command{
	Use:   "mapper",
	Short: "Create the .usmap mapping file by injecting the dumper module",
	Long: `Launches the game, waits for the process to appear and settle, injects
the dumper module, terminates the game and publishes the produced .usmap
file to the configured destination.

The injector's own success/failure report is unreliable, so a reported
failure is always verified against the dumper output directory before the
run is considered failed.`,
	RunE: runMapper,
}

func init() {
	rootCmd.AddCommand(mapperCmd)

	mapperCmd.Flags().Bool("force", false, "regenerate even when the destination mapping file exists")
	mapperCmd.Flags().String("output-dir", "", "dumper output directory (overrides mapper.output_dir)")
	mapperCmd.Flags().String("destination", "", "final .usmap path (overrides mapper.destination)")

	viper.BindPFlag("mapper.force", mapperCmd.Flags().Lookup("force"))
	viper.BindPFlag("mapper.output_dir", mapperCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("mapper.destination", mapperCmd.Flags().Lookup("destination"))
}

func runMapper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newRunLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	injector := inject.NewCommandInjector(log, cfg.Mapper.InjectorPath)
	pipeline := mapper.New(cfg, log, injector)

	res, err := pipeline.Run()
	if err != nil {
		return err
	}

	fmt.Printf("Mapping file ready (%s): %s\n", res.Status, res.Path)
	return nil
}
