package shell

import (
	"context"

	"codeberg.org/snonux/wordsmith/internal/review"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// Review runs one review session until it completes or the user quits.
func (s *Shell) Review(ctx context.Context) error {
	ctrl := review.New(s.deps.Scheduler, review.WithLogger(s.deps.Logger))
	defer ctrl.End()

	s.printf("Starting review...\n")
	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := ctrl.Snapshot()
		switch snap.State {
		case review.Front:
			s.printf("\nWord: %s\n", snap.Card.Text)
			line, ok := s.prompt("[enter] show definition, [q]uit: ")
			if !ok || line == "q" {
				s.printSessionEnd(snap.Stats)
				return nil
			}
			if err := ctrl.Reveal(); err != nil {
				return err
			}

		case review.Flipped:
			s.printf("Definition: %s\n", snap.Card.Definition)
			outcome, ok := s.askOutcome()
			if !ok {
				s.printSessionEnd(snap.Stats)
				return nil
			}
			if err := ctrl.Grade(ctx, outcome); err != nil {
				return err
			}
			if notice := ctrl.Snapshot().Notice; notice != "" {
				s.printf("%s\n", notice)
			}

		case review.Failed:
			s.printf("%s\n", snap.Error)
			line, ok := s.prompt("[r]etry or [q]uit: ")
			if !ok || line != "r" {
				s.printSessionEnd(snap.Stats)
				return nil
			}
			if err := ctrl.Retry(ctx); err != nil {
				return err
			}

		case review.Complete:
			s.printf("\nSession complete!\n")
			s.printStats(snap.Stats)
			return nil

		default:
			// Loading and Ended cannot be observed here: every call above
			// returns only after the fetch settled.
			return nil
		}
	}
}

func (s *Shell) askOutcome() (vocab.Outcome, bool) {
	for {
		line, ok := s.prompt("Did you know it? [y]es / [n]o / [q]uit: ")
		switch {
		case !ok, line == "q":
			return vocab.Incorrect, false
		case line == "y":
			return vocab.Correct, true
		case line == "n":
			return vocab.Incorrect, true
		}
	}
}

func (s *Shell) printSessionEnd(stats review.Stats) {
	s.printf("\nSession ended.\n")
	s.printStats(stats)
}

func (s *Shell) printStats(stats review.Stats) {
	s.printf("Words reviewed: %d\n", stats.Attempted)
	s.printf("Correct: %d\n", stats.Correct)
	s.printf("Accuracy: %d%%\n", stats.Accuracy())
	if stats.Unsynced > 0 {
		s.printf("Not synced: %d (grades the server did not accept)\n", stats.Unsynced)
	}
}
