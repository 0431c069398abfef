package cmd

import (
	"fmt"
	"os"

	"upload-manager/core/config"
	"upload-manager/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	getOutput      string
	existsAsObject bool
	uploadPrefix   string
)

// storageCmd groups direct operations on the media bucket.
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Operate on the media bucket",
	Long: `Runs single media storage operations with the same retry policy as the server.

Examples:
  storage ls chris/uploads
  storage exists --object chris/uploads/test_file1
  storage put ./report.pdf chris/uploads/report.pdf
  storage get chris/uploads/report.pdf -o report.pdf
  storage cp chris/uploads/report.pdf chris/uploads/archive/report.pdf
  storage rm chris/uploads/report.pdf
  storage upload-dir ./exports --prefix chris/uploads`,
}

// openMedia builds the media storage the storage commands run against.
var openMedia = func(cfg *config.Config, logg *zap.Logger) *storage.MediaStorage {
	return newMedia(cfg, logg, nil)
}

// withMedia runs fn against a freshly built media storage.
func withMedia(fn func(cmd *cobra.Command, args []string, media *storage.MediaStorage, logg *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()
		return fn(cmd, args, openMedia(cfg, logg), logg)
	}
}

var storageLsCmd = &cobra.Command{
	Use:   "ls <prefix>",
	Short: "List every key under a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, _ *zap.Logger) error {
		keys, err := media.Ls(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	}),
}

var storageExistsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Check whether any key starts with a path",
	Args:  cobra.ExactArgs(1),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, _ *zap.Logger) error {
		check := media.PathExists
		if existsAsObject {
			check = media.ObjExists
		}
		exists, err := check(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), exists)
		return nil
	}),
}

var storageGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Download an object to stdout or a file",
	Args:  cobra.ExactArgs(1),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, _ *zap.Logger) error {
		data, err := media.DownloadObj(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if getOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(getOutput, data, 0644)
	}),
}

var storagePutCmd = &cobra.Command{
	Use:   "put <local-file> <key>",
	Short: "Upload a local file, replacing any object at key",
	Args:  cobra.ExactArgs(2),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, logg *zap.Logger) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		info, err := media.UploadObj(cmd.Context(), args[1], data)
		if err != nil {
			return err
		}
		logg.Info("Uploaded object", zap.String("key", info.Key), zap.Int64("size", info.Size))
		return nil
	}),
}

var storageCpCmd = &cobra.Command{
	Use:   "cp <src-key> <dest-key>",
	Short: "Copy an object to another key",
	Args:  cobra.ExactArgs(2),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, logg *zap.Logger) error {
		if err := media.CopyObj(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		logg.Info("Copied object", zap.String("src", args[0]), zap.String("dest", args[1]))
		return nil
	}),
}

var storageRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete an object",
	Args:  cobra.ExactArgs(1),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, logg *zap.Logger) error {
		if err := media.DeleteObj(cmd.Context(), args[0]); err != nil {
			return err
		}
		logg.Info("Deleted object", zap.String("key", args[0]))
		return nil
	}),
}

var storageUploadDirCmd = &cobra.Command{
	Use:   "upload-dir <local-dir>",
	Short: "Upload a local directory recursively, skipping existing keys",
	Args:  cobra.ExactArgs(1),
	RunE: withMedia(func(cmd *cobra.Command, args []string, media *storage.MediaStorage, _ *zap.Logger) error {
		report, err := media.UploadFiles(cmd.Context(), args[0], uploadPrefix)
		if err != nil {
			return err
		}
		for _, key := range report.Uploaded {
			fmt.Fprintln(cmd.OutOrStdout(), "uploaded", key)
		}
		for _, key := range report.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "skipped", key)
		}
		return nil
	}),
}

func init() {
	storageExistsCmd.Flags().BoolVar(&existsAsObject, "object", false, "Run the object existence check")
	storageGetCmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write the object to this file instead of stdout")
	storageUploadDirCmd.Flags().StringVar(&uploadPrefix, "prefix", "", "Key prefix replacing the local directory")

	storageCmd.AddCommand(storageLsCmd, storageExistsCmd, storageGetCmd, storagePutCmd, storageCpCmd, storageRmCmd, storageUploadDirCmd)
	RootCmd.AddCommand(storageCmd)
}
