package beastwords

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/n2code/beastwords/internal/document"
	out "github.com/n2code/beastwords/internal/output"
	"github.com/n2code/beastwords/internal/partition"
	"github.com/n2code/beastwords/internal/sequence"
	"go.uber.org/zap"
)

type VerbosityLevel int

const (
	DefaultVerbosity VerbosityLevel = iota
	VerboseMode
	QuietMode
)

// CreateConfig holds a set of common configuration switches that concern all calls to the beastwords API.
// The zero value is a sensible default.
type CreateConfig struct {
	Verbosity     VerbosityLevel
	Logger        *zap.Logger //nil discards all log output
	Indent        int         //spaces per level in the written document, zero means document.DefaultIndent
	FancyTerminal bool        //allows styled output
	Out           io.Writer   //receives printed results, nil means standard output
}

type converter struct {
	doc           *document.Document
	kind          ModelKind
	variant       variant
	partitions    *partition.Map
	ascertainment []int
	converted     bool
	sharedModelId string //set once the shared substitution model was built
	source        string //path the document was loaded from, empty if read from a stream
	log           *zap.Logger
	printer       out.Printer
}

// Open loads the BEAUti document at the given path.
func Open(path string, config CreateConfig) (Converter, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, fmt.Errorf("document load error: %w", err)
	}
	instance := makeConverter(doc, config)
	instance.source = path
	return instance, nil
}

// Read parses a BEAUti document from r.
func Read(r io.Reader, config CreateConfig) (Converter, error) {
	doc, err := document.Read(r)
	if err != nil {
		return nil, fmt.Errorf("document load error: %w", err)
	}
	return makeConverter(doc, config), nil
}

func makeConverter(doc *document.Document, config CreateConfig) (instance *converter) {
	instance = &converter{doc: doc, log: config.Logger}
	if instance.log == nil {
		instance.log = zap.NewNop()
	}
	if config.Indent > 0 {
		doc.SetIndent(config.Indent)
	}

	classes := []out.Class{out.Required, out.Error}
	switch config.Verbosity {
	case VerboseMode:
		classes = append(classes, out.Verbose)
		fallthrough
	case DefaultVerbosity:
		classes = append(classes, out.Normal)
	}
	if config.Out == nil {
		instance.printer = out.NewPrinter(classes, config.FancyTerminal)
	} else {
		instance.printer = out.NewPrinterTo(classes, config.FancyTerminal, config.Out, os.Stderr)
	}

	template := doc.Root().SelectAttrValue(templateAttr, "")
	instance.kind = kindOfTemplate(template)
	instance.variant = variants[instance.kind]
	if instance.kind == Generic {
		instance.log.Warn("unsupported template, falling back to generic conversion", zap.String("template", template))
	}

	instance.partitions, instance.ascertainment = partition.Compute(partition.Labels(doc.Root()))
	instance.log.Debug("document loaded",
		zap.Stringer("kind", instance.kind),
		zap.Strings("partitions", instance.partitions.Keys()),
		zap.Ints("ascertainment", instance.ascertainment))
	return
}

func (c *converter) Kind() ModelKind {
	return c.kind
}

func (c *converter) Partitions() *partition.Map {
	return c.partitions.Clone()
}

func (c *converter) Ascertainment() []int {
	return slices.Clone(c.ascertainment)
}

func (c *converter) Repartition(spec string) error {
	if c.converted {
		return ErrAlreadyConverted
	}
	regrouped, err := partition.Repartition(spec, c.partitions, c.log)
	if err != nil {
		return newConversionError(fmt.Sprintf("repartitioning by %q failed", spec), err)
	}
	c.log.Info("words repartitioned",
		zap.String("spec", spec),
		zap.Int("words", c.partitions.Len()),
		zap.Int("partitions", regrouped.Len()))
	c.partitions = regrouped
	return nil
}

// adoptLayout replaces the partitioning, the previous site numbering is invalid from here on.
func (c *converter) adoptLayout(layout sequence.Layout) {
	c.partitions = layout.Partitions()
	c.ascertainment = layout.Ascertainment()
}
