package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkantola/beatroll"
)

var (
	wavOut    bool
	rawOut    bool
	midiOut   bool
	pcm16     bool
	outputDir string
)

func init() {
	exportCmd.Flags().BoolVarP(&wavOut, "wav", "w", false, "Render the song to a .wav file.")
	exportCmd.Flags().BoolVarP(&rawOut, "raw", "r", false, "Render the song to a headerless .raw sample file.")
	exportCmd.Flags().BoolVarP(&midiOut, "midi", "m", false, "Export the song as a standard MIDI file.")
	exportCmd.Flags().BoolVarP(&pcm16, "pcm", "c", false, "Convert rendered audio to 16-bit signed PCM. By default, the samples are 32-bit floats.")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory where to place the output files. Defaults to the directory of the song file.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [songfile]",
	Short: "Render a song file to .wav, .raw or .mid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wavOut && !rawOut && !midiOut {
			wavOut = true // export something rather than nothing
		}
		return export(args[0])
	},
}

func export(filename string) error {
	song, err := readSongFile(filename)
	if err != nil {
		return err
	}
	output := func(extension string, contents []byte) error {
		dir, name := filepath.Split(filename)
		if outputDir != "" {
			dir = outputDir
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	if wavOut || rawOut {
		buffer, err := beatroll.RenderSong(beatroll.NewSynth(), song)
		if err != nil {
			return fmt.Errorf("rendering %v failed: %v", filename, err)
		}
		if wavOut {
			wav, err := beatroll.Wav(buffer, pcm16)
			if err != nil {
				return err
			}
			if err := output(".wav", wav); err != nil {
				return err
			}
		}
		if rawOut {
			raw, err := beatroll.Raw(buffer, pcm16)
			if err != nil {
				return err
			}
			if err := output(".raw", raw); err != nil {
				return err
			}
		}
	}
	if midiOut {
		var buf bytes.Buffer
		if err := song.WriteMIDI(&buf); err != nil {
			return fmt.Errorf("exporting %v as MIDI failed: %v", filename, err)
		}
		if err := output(".mid", buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func readSongFile(filename string) (beatroll.Song, error) {
	var song beatroll.Song
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		return song, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	if errJSON := json.Unmarshal(inputBytes, &song); errJSON != nil {
		if errYaml := yaml.Unmarshal(inputBytes, &song); errYaml != nil {
			return song, fmt.Errorf("the song could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	song.SetDefaults()
	if err := song.Validate(); err != nil {
		return song, fmt.Errorf("%v is not a valid song: %v", filename, err)
	}
	return song, nil
}
