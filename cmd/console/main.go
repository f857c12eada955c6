package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/splatform/playback-engine/pkg/experience"
)

// The console runs a playback session entirely in-process: no API, no
// Redis. It is the fastest way to playtest an experience document while
// authoring it.
func main() {
	dataDir := getEnv("DATA_DIR", "./data")

	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	} else {
		selected, err := selectExperience(dataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		path = selected
	}

	exp, err := loadExperience(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load experience: %v\n", err)
		os.Exit(1)
	}

	ui := NewConsoleUI(exp)
	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Console error: %v\n", err)
		os.Exit(1)
	}
}

func selectExperience(dataDir string) (string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory %s: %w", dataDir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no experience files in %s", dataDir)
	}
	sort.Strings(files)

	fmt.Println("Available Experiences:")
	for i, f := range files {
		fmt.Printf("  %d - %s\n", i+1, strings.TrimSuffix(f, ".json"))
	}
	fmt.Print("\nSelect an experience by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(files) {
		return "", fmt.Errorf("invalid selection")
	}
	return filepath.Join(dataDir, files[choice-1]), nil
}

func loadExperience(path string) (*experience.Experience, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var exp experience.Experience
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, err
	}
	exp.FileName = filepath.Base(path)
	return &exp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
