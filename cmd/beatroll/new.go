package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkantola/beatroll"
)

func init() {
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new [songfile]",
	Short: "Write a new default song file",
	Long: `New writes a fresh song with the default tempo, key and a single
empty track. The format is chosen by the file extension: .json gets JSON,
everything else YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song := beatroll.NewSong()
		var contents []byte
		var err error
		if filepath.Ext(args[0]) == ".json" {
			contents, err = json.MarshalIndent(song, "", "  ")
		} else {
			contents, err = yaml.Marshal(song)
		}
		if err != nil {
			return fmt.Errorf("could not marshal the song: %v", err)
		}
		if err := os.WriteFile(args[0], contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", args[0], err)
		}
		return nil
	},
}
