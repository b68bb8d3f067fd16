package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikrosim/taxben/internal/calculation"
	"github.com/mikrosim/taxben/internal/config"
	"github.com/mikrosim/taxben/internal/params"
	"github.com/mikrosim/taxben/internal/tui"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: mikrosim-tui <population-file> <params-file> [date]")
		os.Exit(1)
	}
	populationPath := os.Args[1]
	paramsPath := os.Args[2]

	refDate := time.Now()
	if len(os.Args) > 3 {
		var err error
		refDate, err = time.Parse("2006-01-02", os.Args[3])
		if err != nil {
			fmt.Printf("Error: invalid date %q (want YYYY-MM-DD)\n", os.Args[3])
			os.Exit(1)
		}
	}

	parser := config.NewInputParser()
	pop, err := parser.LoadPopulation(populationPath)
	if err != nil {
		fmt.Printf("Error loading population: %v\n", err)
		os.Exit(1)
	}

	table, err := params.LoadFile(paramsPath)
	if err != nil {
		fmt.Printf("Error loading parameters: %v\n", err)
		os.Exit(1)
	}

	engine, err := calculation.NewEngine(table, refDate)
	if err != nil {
		fmt.Printf("Error building engine: %v\n", err)
		os.Exit(1)
	}

	results, err := engine.Run(context.Background(), pop)
	if err != nil {
		fmt.Printf("Error running evaluation: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		tui.NewModel(results),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
