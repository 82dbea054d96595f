package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/guidexml/internal/guidexml"
	"github.com/dgallion1/guidexml/internal/pipeline"
)

// TranslateCmd implements the 'translate' command.
type TranslateCmd struct {
	File         string `arg:"" help:"Document to translate" type:"existingfile"`
	Title        string `short:"t" help:"Guide title (defaults to the first section title)"`
	GuideVersion string `name:"guide-version" help:"Value of the <version> element" default:"1.0"`
	Out          string `short:"o" help:"Write the guide here instead of stdout"`
	NoPdftotext  bool   `name:"no-pdftotext" help:"Do not fall back to pdftotext for PDFs"`
}

func (c *TranslateCmd) Run(g *Global) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	tr := guidexml.NewTranslator(guidexml.WithLogger(g.Logger))
	conv := pipeline.NewConverter(tr, c.GuideVersion, !c.NoPdftotext)
	res, err := conv.Convert(c.File, c.Title, data)
	if err != nil {
		return fmt.Errorf("translate %s: %w", c.File, err)
	}
	g.Logger.Debug("translated", "file", c.File, "records", res.Records, "sections", res.Sections)

	if c.Out == "" {
		_, err = os.Stdout.Write(res.Guide)
		return err
	}
	return os.WriteFile(c.Out, res.Guide, 0o644)
}
