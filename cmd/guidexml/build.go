package main

import (
	"fmt"
	"time"

	"github.com/dgallion1/guidexml/internal/builder"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Config   string        `short:"c" help:"Project configuration file" default:"guidexml.yaml" type:"existingfile"`
	Out      string        `short:"o" help:"Output directory" default:"_build/guidexml"`
	Watch    bool          `short:"w" help:"Rebuild when source files change"`
	Debounce time.Duration `help:"Quiet period before a rebuild in watch mode" default:"300ms"`
}

func (c *BuildCmd) Run(g *Global) error {
	p, err := builder.LoadProject(c.Config)
	if err != nil {
		return err
	}
	b := builder.New(p, builder.WithLogger(g.Logger))

	path, err := b.Build(g.Ctx, c.Out)
	if err != nil {
		if !c.Watch {
			return fmt.Errorf("build: %w", err)
		}
		g.Logger.Error("initial build failed", "error", err)
	} else {
		fmt.Println(path)
	}

	if !c.Watch {
		return nil
	}
	return b.Watch(g.Ctx, c.Out, c.Debounce)
}
