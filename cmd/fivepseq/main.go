// Command fivepseq classifies 5'-seq reads and counts 5' k-mers of mapped
// reads.
//
// Usage:
//
//	fivepseq align FILE     Seed-align FASTQ/FASTA reads, write FILE.5pseqs
//	fivepseq kmers FILE     Count 5' k-mers of a BAM file, write FILE.kmers
//	fivepseq config         Print the default configuration as TOML
//	fivepseq version        Show version information
package main

import (
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"

	"github.com/aria-lang/fivepseq-go/pkg/fivepseq"
)

type globalOptions struct {
	configFile string
	maxReads   uint64
	progress   bool
}

func (o *globalOptions) load(cmd *cobra.Command) (*fivepseq.Config, error) {
	cfg := fivepseq.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = fivepseq.LoadConfig(o.configFile); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-reads") {
		cfg.MaxReads = o.maxReads
	}
	return cfg, nil
}

// startProgress returns a per-record callback and a function that stops the
// counter. The callback is nil when progress display is off.
func (o *globalOptions) startProgress() (func(), func()) {
	if !o.progress {
		return nil, func() {}
	}
	bar := pb.ProgressBarTemplate(`{{counters . }} records {{speed . "%s/s" }} {{etime . }}`).
		New(0).
		SetWriter(os.Stderr).
		Start()
	return func() { bar.Increment() }, func() { bar.Finish() }
}

func alignCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "align FILE",
		Short: "Seed-align reads and count them by 5' key",
		Long: `Align the leading bases of every read against the spike-in and plasmid
references and write one row per grouping key to FILE.5pseqs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			progress, stop := opts.startProgress()
			out, err := fivepseq.RunAlign(args[0], cfg, progress)
			stop()
			if err != nil {
				return err
			}
			log.Printf("wrote %s", out)
			return nil
		},
	}
}

func kmersCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kmers FILE",
		Short: "Count 5' k-mers of mapped reads",
		Long: `Count the reference k-mer at the 5' end of every unique, mapped, unclipped
read of a BAM file and write the counts to FILE.kmers. Summary lines are
printed to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			progress, stop := opts.startProgress()
			out, err := fivepseq.RunKmers(args[0], cfg, cmd.OutOrStdout(), progress)
			stop()
			if err != nil {
				return err
			}
			log.Printf("wrote %s", out)
			return nil
		},
	}
}

func configCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fivepseq %s\n", fivepseq.Version())
		},
	}
}

func rootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "fivepseq",
		Short: "5'-seq read classification",
		Long: `fivepseq: 5'-seq and CAGE read classification

align   groups raw reads by the sequence preceding a fixed reference region,
        collapsing spike-in control reads into one row.
kmers   counts the 5' reference k-mer of reads already mapped to a genome.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML configuration file")
	flags.Uint64VarP(&opts.maxReads, "max-reads", "n", fivepseq.DefaultConfig().MaxReads, "Stop after this many classified reads (0 for no limit)")
	flags.BoolVarP(&opts.progress, "progress", "p", false, "Show a record counter on stderr")

	root.AddCommand(alignCommand(opts))
	root.AddCommand(kmersCommand(opts))
	root.AddCommand(configCommand(opts))
	root.AddCommand(versionCommand())
	return root
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Fatalf("fivepseq: %v", err)
	}
}
