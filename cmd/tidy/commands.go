package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidy/pkg/executor"
	"github.com/arthur-debert/tidy/pkg/filesystem"
	"github.com/arthur-debert/tidy/pkg/rules"
)

var (
	sortMode    string
	removeDups  bool
	permanent   bool
	rmOriginals bool
	logLimit    int
	clearLog    bool
)

func init() {
	sortCmd.Flags().StringVarP(&sortMode, "mode", "m", "type",
		"Sort mode: type, date, size, pattern, keyword, metadata")
	watchCmd.Flags().StringVarP(&sortMode, "mode", "m", "type",
		"Sort mode: type, date, size, pattern, keyword, metadata")

	dupsCmd.Flags().BoolVar(&removeDups, "rm", false, "Remove duplicates, keeping the first of each group")
	dupsCmd.Flags().BoolVar(&permanent, "permanent", false, "Bypass the trash vault when removing")

	cleanupTempCmd.Flags().BoolVar(&permanent, "permanent", false, "Bypass the trash vault")
	rmCmd.Flags().BoolVar(&permanent, "permanent", false, "Bypass the trash vault")

	archiveCreateCmd.Flags().BoolVar(&rmOriginals, "rm", false, "Soft-delete the originals after archiving")
	archiveExtractCmd.Flags().BoolVar(&rmOriginals, "rm", false, "Soft-delete the archive after extraction")

	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "Show only the most recent N records")
	logCmd.Flags().BoolVar(&clearLog, "clear", false, "Clear the operation log")

	cleanupCmd.AddCommand(cleanupEmptyCmd, cleanupTempCmd)
	archiveCmd.AddCommand(archiveCreateCmd, archiveExtractCmd)
	trashCmd.AddCommand(trashListCmd, trashRestoreCmd)

	rootCmd.AddCommand(sortCmd, dupsCmd, cleanupCmd, archiveCmd, trashCmd,
		logCmd, mvCmd, cpCmd, rmCmd, mkdirCmd, watchCmd)
}

// buildMode constructs the sort mode for the sort and watch commands.
func buildMode() (rules.Mode, error) {
	return rules.ModeFor(sortMode, cfg, filesystem.NewOS(), engine.Extractor())
}

var sortCmd = &cobra.Command{
	Use:   "sort <dir>",
	Short: "Sort a directory's files into category subfolders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := buildMode()
		if err != nil {
			return err
		}
		result, err := engine.Sort(args[0], mode, executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var dupsCmd = &cobra.Command{
	Use:   "dups <dir>",
	Short: "Find (and optionally remove) files with identical content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := executor.Options{Permanent: permanent}
		var result executor.Result
		var err error
		if removeDups {
			result, err = engine.RemoveDuplicates(args[0], opts)
		} else {
			result, err = engine.FindDuplicates(args[0], opts)
		}
		if err != nil {
			return err
		}
		printGroups(result)
		printResult(result)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove empty folders or temp files",
}

var cleanupEmptyCmd = &cobra.Command{
	Use:   "empty <dir>",
	Short: "Remove empty folders under a directory (never the directory itself)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.CleanupEmptyDirs(args[0], executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var cleanupTempCmd = &cobra.Command{
	Use:   "temp <dir>",
	Short: "Trash files matching the configured temp patterns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.CleanupTempFiles(args[0], executor.Options{Permanent: permanent})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Create or extract archives",
}

var archiveCreateCmd = &cobra.Command{
	Use:   "create <archive.zip> <path>...",
	Short: "Compress paths into an archive",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.CreateArchive(args[1:], args[0], rmOriginals, executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var archiveExtractCmd = &cobra.Command{
	Use:   "extract <archive.zip> <dest>",
	Short: "Extract an archive into a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.ExtractArchive(args[0], args[1], rmOriginals, executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List or restore soft-deleted files",
}

var trashListCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List the trash entries for a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := engine.TrashEntries(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("trash is empty")
			return nil
		}
		for _, entry := range entries {
			fmt.Printf("%s  %s  %s\n", entry.ID, entry.Time.Format("2006-01-02 15:04:05"), entry.From)
		}
		return nil
	},
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <dir> <id>",
	Short: "Restore a trash entry to its original location",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.RestoreFromTrash(args[0], args[1])
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show or clear the operation log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if clearLog {
			engine.ClearLog()
			fmt.Println("operation log cleared")
			return nil
		}
		printRecords(engine.Log(logLimit))
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <source> <dest>",
	Short: "Move a file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.Move(args[0], args[1], executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var cpCmd = &cobra.Command{
	Use:   "cp <source> <dest>",
	Short: "Copy a file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.Copy(args[0], args[1], executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a file or directory (soft delete by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.Delete(args[0], executor.Options{Permanent: permanent})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.MakeDir(args[0], executor.Options{})
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Keep sorting a directory as new files appear",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := buildMode()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err = engine.Watch(ctx, args[0], mode, executor.Options{})
		if err == context.Canceled {
			return nil
		}
		return err
	},
}
