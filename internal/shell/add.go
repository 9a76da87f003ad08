package shell

import (
	"context"

	"codeberg.org/snonux/wordsmith/internal/vocab"
	"codeberg.org/snonux/wordsmith/internal/wizard"
)

// AddWord runs the add-word workflow. A non-empty seed is explained right
// away; otherwise the word is asked for.
func (s *Shell) AddWord(ctx context.Context, seed string) error {
	var saved *vocab.Word
	flow := wizard.New(wizard.Deps{
		Explainer: s.deps.Explainer,
		Store:     s.deps.Words,
		Arena:     s.deps.Arena,
		OnSaved:   func(w vocab.Word) { saved = &w },
		Logger:    s.deps.Logger,
	}, wizard.Options{Seed: seed})
	defer flow.Close()

	if !vocab.IsBlank(seed) {
		s.printf("Explaining %q...\n", seed)
		if err := flow.Start(ctx); err != nil {
			return err
		}
		s.reportError(flow)
	}

	hinted := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := flow.Snapshot()
		if snap.Closed {
			if saved != nil {
				s.printf("Saved %q.\n", saved.Text)
			}
			return nil
		}
		if snap.Step == wizard.Input {
			line, ok := s.prompt("Word to add (empty to cancel): ")
			if !ok || vocab.IsBlank(line) {
				return nil
			}
			if err := flow.SetWord(line); err != nil {
				return err
			}
			s.printf("Explaining %q...\n", line)
			if err := flow.Submit(ctx); err != nil {
				return err
			}
			s.reportError(flow)
			continue
		}

		if hinted != snap.Word {
			hinted = snap.Word
			s.printExplanation(ctx, snap)
		}

		if err := s.explainedCommand(ctx, flow); err != nil {
			return err
		}
	}
}

// reportError prints the error left by the last workflow operation.
func (s *Shell) reportError(flow *wizard.Workflow) {
	if msg := flow.Snapshot().Error; msg != "" {
		s.printf("%s\n", msg)
	}
}

func (s *Shell) printExplanation(ctx context.Context, snap wizard.Snapshot) {
	s.printf("\n%s\n", snap.Word)
	if s.deps.Hinter != nil {
		if hint, err := s.deps.Hinter.Fetch(ctx, snap.Word); err == nil && hint != "" {
			s.printf("Pronunciation: %s\n", hint)
		} else if err != nil {
			s.logger.Debug("no pronunciation hint", "word", snap.Word, "error", err)
		}
	}
	s.printDraft(snap.Draft)
}

func (s *Shell) printDraft(d *vocab.Explanation) {
	s.printf("Definition: %s\n", d.Definition)
	if d.Example != "" {
		s.printf("Example: %s\n", d.Example)
	}
	if d.Mnemonic != "" {
		s.printf("Mnemonic: %s\n", d.Mnemonic)
	}
}

// explainedCommand reads and runs one command in the Explained step.
// Leaving the workflow closes it.
func (s *Shell) explainedCommand(ctx context.Context, flow *wizard.Workflow) error {
	coach := flow.Practice()
	menu := "[s]ave, [n]ew example"
	if coach != nil {
		menu += ", [l]isten, [r]ecord"
	}
	line, ok := s.prompt(menu + ", [q]uit: ")
	if !ok {
		flow.Close()
		return nil
	}

	switch line {
	case "s":
		s.printf("Saving...\n")
		if err := flow.Confirm(ctx); err != nil {
			return err
		}
		s.reportError(flow)
	case "n":
		s.printf("Generating a new example...\n")
		if err := flow.Regenerate(ctx); err != nil {
			return err
		}
		if snap := flow.Snapshot(); snap.Error != "" {
			s.printf("%s\n", snap.Error)
		} else if snap.Draft != nil {
			s.printDraft(snap.Draft)
		}
	case "l", "r":
		if coach == nil {
			s.printf("Pronunciation practice is not available.\n")
			return nil
		}
		var err error
		if line == "l" {
			err = coach.Listen(ctx)
		} else {
			s.printf("Say the word now...\n")
			err = coach.Record(ctx)
		}
		if err != nil {
			return err
		}
		if msg := coach.Snapshot().Feedback.Message(); msg != "" {
			s.printf("%s\n", msg)
		}
	case "q":
		flow.Close()
	default:
		s.printf("Unknown command %q.\n", line)
	}
	return nil
}
