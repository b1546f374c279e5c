package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seqlab/visiondata/vision/dataset"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "visiondata",
		Short: "Inspect image-folder and manifest datasets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")

	rootCmd.AddCommand(classesCmd())
	rootCmd.AddCommand(manifestCmd())
	rootCmd.AddCommand(scanCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig layers an optional config file and VISIONDATA_* environment
// variables under the command-line flags.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("VISIONDATA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("image-dir", "")
	viper.SetDefault("annotation-dir", "")
	viper.SetDefault("extensions", dataset.DefaultImageExtensions)
	return nil
}

func classesCmd() *cobra.Command {
	var chosen []string

	cmd := &cobra.Command{
		Use:   "classes [root]",
		Short: "List class folders under a dataset root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if len(chosen) == 0 {
				entries, err := os.ReadDir(root)
				if err != nil {
					return err
				}
				for _, entry := range entries {
					if entry.IsDir() {
						chosen = append(chosen, entry.Name())
					}
				}
				sort.Strings(chosen)
			}

			classes, classToIdx, err := dataset.FindClasses(root, chosen)
			if err != nil {
				return err
			}

			for _, name := range classes {
				fmt.Printf("%3d  %s\n", classToIdx[name], name)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&chosen, "classes", nil, "class folders to keep (default: all)")
	return cmd
}

func scanCmd() *cobra.Command {
	var chosen []string
	var extensions []string

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan class folders and report the sample distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(extensions) == 0 {
				extensions = viper.GetStringSlice("extensions")
			}

			ds, err := dataset.NewSelectedFolder(args[0], chosen, dataset.ExtensionFilter(extensions...))
			if err != nil {
				return err
			}

			fmt.Print(ds.String())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&chosen, "classes", nil, "class folders to keep")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "file extensions to accept")
	_ = cmd.MarkFlagRequired("classes")
	return cmd
}

func manifestCmd() *cobra.Command {
	var imageDir, annotationDir string
	var check bool

	cmd := &cobra.Command{
		Use:   "manifest [file]",
		Short: "Validate a manifest and summarize its sequences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if imageDir == "" {
				imageDir = viper.GetString("image-dir")
			}
			if annotationDir == "" {
				annotationDir = viper.GetString("annotation-dir")
			}

			ds, err := dataset.NewDavisDataset(args[0], imageDir, annotationDir, dataset.DavisConfig{})
			if err != nil {
				return err
			}

			sequences, counts := ds.ClassSummary()
			fmt.Printf("%d rows, %d sequences\n", ds.Len(), len(sequences))
			for _, seq := range sequences {
				fmt.Printf("  %s: %d\n", seq, counts[seq])
			}

			if !check {
				return nil
			}

			// Stat every referenced file without decoding it.
			missing := 0
			for i := 0; i < ds.Len(); i++ {
				for _, resolve := range []func(int) (string, error){ds.ImagePath, ds.AnnotationPath} {
					path, err := resolve(i)
					if err != nil {
						return err
					}
					if _, err := os.Stat(path); err != nil {
						fmt.Printf("missing: %s\n", path)
						missing++
					}
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d referenced file(s) missing", missing)
			}
			fmt.Println("all referenced files present")
			return nil
		},
	}

	cmd.Flags().StringVar(&imageDir, "image-dir", "", "base directory prepended to image paths")
	cmd.Flags().StringVar(&annotationDir, "annotation-dir", "", "base directory prepended to annotation paths")
	cmd.Flags().BoolVar(&check, "check", false, "stat every referenced file")
	return cmd
}
