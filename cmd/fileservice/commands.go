package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-fileservice/pkg/fileservice/config"
)

// NewReadCommand creates the read command
func NewReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read <name>",
		Short: "Print a file's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := NewServiceFromFlags(cmd)
			if err != nil {
				return err
			}
			content, err := svc.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

// NewWriteCommand creates the write command
func NewWriteCommand() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "write <name> [content]",
		Short: "Store content under a name",
		Long: `Store content under a name. The content is taken from the second
argument, from --from-file, or from stdin when neither is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case len(args) == 2 && fromFile != "":
				return fmt.Errorf("content argument and --from-file are mutually exclusive")
			case len(args) == 2:
				content = args[1]
			case fromFile != "":
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", fromFile, err)
				}
				content = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				content = string(data)
			}

			svc, err := NewServiceFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := svc.WriteFile(cmd.Context(), args[0], content); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", args[0], len(content))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "from-file", "f", "", "read content from a local file")

	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := NewServiceFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := svc.DeleteFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := NewServiceFromFlags(cmd)
			if err != nil {
				return err
			}

			var names []string
			if match != "" {
				names, err = svc.MatchFiles(cmd.Context(), match)
			} else {
				names, err = svc.ListFiles(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "only list names matching this glob (supports **)")

	return cmd
}

// NewTransformCommand creates the transform command
func NewTransformCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transform <name>",
		Short: "Print a file's content after the transform rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := NewServiceFromFlags(cmd)
			if err != nil {
				return err
			}
			content, err := svc.TransformFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "batch [name...]",
		Short: "Transform many files and report each outcome",
		Long: `Transform many files at once. Files are named as arguments or
selected with --match. A failed item is reported and does not stop the
others; the command exits non-zero if any item failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (match == "") {
				return fmt.Errorf("give either file names or --match")
			}

			svc, err := NewServiceFromFlags(cmd)
			if err != nil {
				return err
			}

			names := args
			if match != "" {
				names, err = svc.MatchFiles(cmd.Context(), match)
				if err != nil {
					return err
				}
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, res := range svc.ProcessBatch(cmd.Context(), names) {
				if res.OK() {
					fmt.Fprintf(out, "== %s\n%s\n", res.Name, res.Content)
					continue
				}
				failed++
				fmt.Fprintf(out, "!! %s: %s\n", res.Name, formatError(res.Err))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d items failed", failed, len(names))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "select files by glob instead of by name")

	return cmd
}

// NewEnvCommand creates the env command
func NewEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Describe the environment variables read by fileservice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := config.Usage()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), usage)
			return err
		},
	}
}
