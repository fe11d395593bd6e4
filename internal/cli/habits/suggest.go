package habits

import (
	"fmt"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/models"
)

type HabitSuggestCmd struct {
	Category string `arg:"" optional:"" help:"Only suggest habits in this category."`
}

func (c *HabitSuggestCmd) Run(ctx *cli.Context) error {
	category := models.Category(c.Category)
	if category != "" && !category.Valid() {
		return fmt.Errorf("unknown category %q", c.Category)
	}

	ideas, err := ctx.Content.Suggestions(category)
	if err != nil {
		// Suggestions are optional content.
		ctx.Log.Debug("No suggestions", "category", category, "error", err)
		ctx.Println("No suggestions available.")
		return nil
	}

	existing, err := ctx.Registry.List()
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, h := range existing {
		have[h.Name] = true
	}

	shown := 0
	for _, idea := range ideas {
		if have[idea.Name] {
			continue
		}
		ctx.Printf("  %-40s %-14s %s\n", idea.Name, idea.Category, idea.Frequency)
		shown++
	}
	if shown == 0 {
		ctx.Println("You already track every suggestion. Nice work!")
		return nil
	}
	ctx.Println("\nAdd one with: habithero habit add \"<name>\" --category <category> --frequency <frequency>")
	return nil
}
