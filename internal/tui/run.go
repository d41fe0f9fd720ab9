package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
)

// PickOptions configures PickColumn.
type PickOptions struct {
	Input  io.Reader
	Output io.Writer
	// Plain selects the monochrome theme.
	Plain bool
}

// PickColumn runs the picker and returns the chosen column. Quitting without a choice yields an
// error wrapping common.ErrInvalidSelection.
func PickColumn(ctx context.Context, result detect.Result, opts PickOptions) (string, error) {
	if len(result.Profiles) == 0 {
		return "", &common.EmptyInputError{Reason: "no columns to choose from"}
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	theme := themes.Default
	if opts.Plain {
		theme = themes.Monochrome
	}

	final, err := tea.NewProgram(NewThemedColumnPicker(result, theme), programOpts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("column picker failed: %w", err)
	}

	picker, ok := final.(ColumnPicker)
	if !ok {
		return "", fmt.Errorf("column picker returned unexpected model %T", final)
	}

	column, chosen := picker.Selected()
	if !chosen {
		return "", fmt.Errorf("%w: no column chosen", common.ErrInvalidSelection)
	}
	return column, nil
}
