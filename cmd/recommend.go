package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/soundalike/internal/formatter"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/shared"
)

// Recommend prints recommendations. Each argument is an artist name and commas inside an argument
// separate further names, so `recommend "Ed Sheeran" Adele` and `recommend "Ed Sheeran, Adele"` agree.
//
// A no-match prints the message and is not an error.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	var names []string
	for _, arg := range cmd.Args().Slice() {
		names = append(names, recommend.SplitNames(arg)...)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one artist name", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	engine := r.newEngine(repo)
	opts := engine.Defaults()
	if cmd.IsSet("top-n") {
		if opts.TopN = cmd.Int("top-n"); opts.TopN <= 0 {
			return fmt.Errorf("%w: --top-n must be positive", shared.ErrInvalidFlag)
		}
	}
	if cmd.IsSet("popularity") {
		opts.IncludePopularity = cmd.Bool("popularity")
	}
	if cmd.IsSet("exclude-input") {
		opts.ExcludeInput = cmd.Bool("exclude-input")
	}

	result, err := engine.RecommendWith(ctx, names, opts)
	if err != nil {
		return err
	}

	if !result.OK() && format == formatter.FormatCSV {
		return r.writePlain("%s\n", result.Message)
	}

	data, err := formatter.Render(*result, format, formatter.Options{Scores: cmd.Bool("scores")})
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
