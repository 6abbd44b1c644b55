package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/aretw0/skury/internal/cli"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send one prompt to the model and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		coord, err := cli.NewCoordinator(e.cfg, e.store, e.logger)
		if err != nil {
			return err
		}
		defer coord.Close()

		prompt := strings.Join(args, " ")
		imagePath, _ := cmd.Flags().GetString("image")

		var reply string
		if imagePath != "" {
			dataURL, err := readDataURL(imagePath)
			if err != nil {
				return err
			}
			reply, err = coord.AskImage(cmd.Context(), prompt, dataURL)
			if err != nil {
				return err
			}
		} else {
			reply, err = coord.Ask(cmd.Context(), prompt)
			if err != nil {
				return err
			}
		}
		return cli.PrintReply(cmd.Context(), os.Stdout, e.store, reply)
	},
}

func readDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("image", "", "Attach an image file to the prompt")
}
