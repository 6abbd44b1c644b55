package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/skury"
	"github.com/aretw0/skury/internal/cli"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Run page operations on a local HTML file",
}

// openPage starts a coordinator with file opened as the active surface.
func openPage(cmd *cobra.Command, path string) (*skury.Coordinator, string, func(), error) {
	e, err := setup(cmd)
	if err != nil {
		return nil, "", nil, err
	}
	html, err := os.ReadFile(path)
	if err != nil {
		e.close()
		return nil, "", nil, err
	}
	coord, err := cli.NewCoordinator(e.cfg, e.store, e.logger)
	if err != nil {
		e.close()
		return nil, "", nil, err
	}
	cleanup := func() {
		coord.Close()
		e.close()
	}

	abs, _ := filepath.Abs(path)
	pageURL, _ := cmd.Flags().GetString("url")
	if pageURL == "" {
		pageURL = "file://" + filepath.ToSlash(abs)
	}
	id, err := coord.OpenSurface(cmd.Context(), surface.Surface{URL: pageURL, HTML: string(html)})
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return coord, id, cleanup, nil
}

func dispatch(ctx context.Context, coord *skury.Coordinator, msg domain.Message) (domain.Response, error) {
	resp, err := coord.Dispatch(ctx, msg)
	if err != nil {
		return resp, err
	}
	return resp, resp.Err()
}

var pageReadCmd = &cobra.Command{
	Use:   "read [file.html]",
	Short: "Print the main text of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, _, cleanup, err := openPage(cmd, args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		resp, err := dispatch(cmd.Context(), coord, domain.ReadPageContent{})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
		return nil
	},
}

var pageSolveCmd = &cobra.Command{
	Use:   "solve [file.html]",
	Short: "Answer the multiple-choice questions of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, id, cleanup, err := openPage(cmd, args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		resp, err := dispatch(cmd.Context(), coord, domain.SolveVisibleForm{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "answered %d question(s)\n", resp.Count)

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return nil
		}
		sess, ok := coord.Session(id)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNoTarget, id)
		}
		html, err := sess.HTML()
		if err != nil {
			return err
		}
		return os.WriteFile(out, []byte(html), 0o644)
	},
}

var pageAnalyzeCmd = &cobra.Command{
	Use:   "analyze [file.html]",
	Short: "Print the questions of a structured form as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, _, cleanup, err := openPage(cmd, args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		resp, err := dispatch(cmd.Context(), coord, domain.AnalyzeStructuredForm{})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Questions)
	},
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.AddCommand(pageReadCmd, pageSolveCmd, pageAnalyzeCmd)
	pageCmd.PersistentFlags().String("url", "", "URL the page is served from (defaults to its file:// path)")
	pageSolveCmd.Flags().String("out", "", "Write the marked page to this file")
}
