package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// PromptAdapter asks the operator questions on the terminal. Prompts from
// concurrent network runs are serialized.
type PromptAdapter struct {
	config *config.RuntimeConfig
	mu     sync.Mutex
}

// NewPromptAdapter creates a new prompt adapter
func NewPromptAdapter(cfg *config.RuntimeConfig) *PromptAdapter {
	return &PromptAdapter{config: cfg}
}

// Confirm asks a yes/no question. Non-interactive runs answer yes.
func (p *PromptAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.config.NonInteractive {
		return true, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	confirm := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}

	if _, err := confirm.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

// SelectNetworks lets the operator pick a network when none was given
func (p *PromptAdapter) SelectNetworks(ctx context.Context, names []string) ([]string, error) {
	if p.config.NonInteractive {
		return nil, fmt.Errorf("no network selected, use --network (interactive selection disabled)")
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no networks configured in sling.toml")
	}
	if len(names) == 1 {
		return names, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             "Select network",
		Items:             names,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(names),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return []string{names[index]}, nil
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		item := items[index]
		if strings.Contains(strings.ToLower(item), strings.ToLower(input)) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var (
	_ usecase.Confirmer       = (*PromptAdapter)(nil)
	_ usecase.NetworkSelector = (*PromptAdapter)(nil)
)
