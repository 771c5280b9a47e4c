package beastwords

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/n2code/beastwords/internal/document"
	"github.com/n2code/beastwords/internal/sequence"
	"go.uber.org/zap"
)

const placeholderKey = "dummy"

var (
	stateBlock      = document.AttrEquals("state", document.IdAttr, "state")
	priorBlock      = document.AttrEquals("distribution", document.IdAttr, "prior")
	runBlock        = document.Tag("run")
	traceLog        = document.AttrEquals("logger", document.IdAttr, "tracelog")
	anyOperator     = document.Tag("operator")
	mutationRate    = document.AttrPrefix("parameter", document.IdAttr, "mutationRate.s:")
	mutationPrior   = document.AttrPrefix("prior", document.IdAttr, "MutationRatePrior.s:")
	mutationScaler  = document.AttrPrefix("operator", document.IdAttr, "mutationRateScaler.s:")
	likelihoodLog   = document.AttrPrefix("log", "idref", "treeLikelihood.")
	mutationRateLog = document.AttrPrefix("log", "idref", "mutationRate.s")
)

func (c *converter) Convert() error {
	if c.converted {
		return ErrAlreadyConverted
	}
	c.converted = true

	stages := []struct {
		name string
		run  func() error
	}{
		{"sequence", c.convertSequences},
		{"state", c.convertState},
		{"prior", c.convertPriors},
		{"tree likelihood", c.convertTreeLikelihood},
		{"operator", c.convertOperators},
		{"logger", c.convertLoggers},
	}
	for _, stage := range stages {
		c.log.Debug("converting", zap.String("stage", stage.name))
		if err := stage.run(); err != nil {
			return newConversionError(stage.name+" conversion failed", err)
		}
	}
	c.log.Info("document converted",
		zap.Stringer("kind", c.kind),
		zap.Strings("partitions", c.partitions.Keys()))
	return nil
}

func (c *converter) convertSequences() error {
	layout, err := sequence.Rebuild(c.doc.Root(), c.partitions)
	if err != nil {
		return err
	}
	c.adoptLayout(layout)
	return nil
}

func (c *converter) convertState() error {
	err := c.ensure(mutationRate, stateBlock, func() *etree.Element {
		placeholder := document.NewElement("parameter", document.Attrs{
			document.IdAttr: "mutationRate.s:" + placeholderKey,
			"spec":          "parameter.RealParameter",
			"name":          "stateNode",
		})
		placeholder.SetText("1.0")
		return placeholder
	})
	if err != nil {
		return err
	}
	if err := c.replace(mutationRate, document.Attrs{document.IdAttr: "mutationRate.s:%s"}); err != nil {
		return err
	}
	return c.variant.convertState.run(c)
}

func (c *converter) convertPriors() error {
	err := c.ensure(mutationPrior, priorBlock, func() *etree.Element {
		placeholder := document.NewElement("prior", document.Attrs{
			document.IdAttr: "MutationRatePrior.s:" + placeholderKey,
			"name":          "distribution",
			"x":             "@mutationRate.s:" + placeholderKey,
		})
		placeholder.AddChild(document.NewElement("OneOnX", document.Attrs{document.IdAttr: "OneOnX.0", "name": "distr"}))
		return placeholder
	})
	if err != nil {
		return err
	}
	err = c.replacePrior(mutationPrior, "MutationRatePrior.s:%s", "@mutationRate.s:%s")
	if err != nil {
		return err
	}
	return c.variant.convertPriors.run(c)
}

func (c *converter) convertOperators() error {
	if len(document.FindAll(c.doc.Root(), mutationScaler)) == 0 {
		placeholder := document.NewElement("operator", document.Attrs{
			document.IdAttr: "mutationRateScaler.s:" + placeholderKey,
			"spec":          "ScaleOperator",
			"parameter":     "@mutationRate.s:" + placeholderKey,
			"scaleFactor":   "0.5",
			"weight":        "0.1",
		})
		if operators := document.FindAll(c.doc.Root(), anyOperator); len(operators) > 0 {
			document.InsertAfter(operators[len(operators)-1], placeholder)
		} else {
			run, err := document.FindOne(c.doc.Root(), runBlock)
			if err != nil {
				return err
			}
			run.AddChild(placeholder)
		}
		c.log.Debug("operator placeholder inserted", zap.String("query", mutationScaler.String()))
	}
	err := c.replace(mutationScaler, document.Attrs{
		document.IdAttr: "mutationRateScaler.s:%s",
		"parameter":     "@mutationRate.s:%s",
	})
	if err != nil {
		return err
	}
	return c.variant.convertOperators.run(c)
}

func (c *converter) convertLoggers() error {
	if err := c.replace(likelihoodLog, document.Attrs{"idref": "treeLikelihood.%s"}); err != nil {
		return err
	}
	err := c.ensure(mutationRateLog, traceLog, func() *etree.Element {
		return document.NewElement("log", document.Attrs{"idref": "mutationRate.s:" + placeholderKey})
	})
	if err != nil {
		return err
	}
	if err := c.replace(mutationRateLog, document.Attrs{"idref": "mutationRate.s:%s"}); err != nil {
		return err
	}
	return c.variant.convertLoggers.run(c)
}

// ensure appends a placeholder to the container unless the query already matches.
func (c *converter) ensure(query document.Selector, container document.Selector, placeholder func() *etree.Element) error {
	if len(document.FindAll(c.doc.Root(), query)) > 0 {
		return nil
	}
	parent, err := document.FindOne(c.doc.Root(), container)
	if err != nil {
		return fmt.Errorf("no place for placeholder of %s: %w", query, err)
	}
	parent.AddChild(placeholder())
	c.log.Debug("placeholder inserted", zap.String("query", query.String()))
	return nil
}

// replace clones the single element matched by the query once per partition.
func (c *converter) replace(query document.Selector, templates document.Attrs) error {
	return document.ReplaceForEachPartition(c.doc.Root(), query, c.partitions.Keys(), templates)
}

// replaceOptional is replace for blocks the document may lack, those are skipped.
func (c *converter) replaceOptional(query document.Selector, templates document.Attrs) error {
	if !c.present(query) {
		return nil
	}
	return c.replace(query, templates)
}

// present reports whether an optional block exists, missing ones are logged.
func (c *converter) present(query document.Selector) bool {
	if len(document.FindAll(c.doc.Root(), query)) == 0 {
		c.log.Debug("optional block missing", zap.String("query", query.String()))
		return false
	}
	return true
}

// replacePrior replaces the prior per partition and gives every element below each replica a partition-specific id.
func (c *converter) replacePrior(query document.Selector, idTemplate string, xTemplate string) error {
	if err := c.replace(query, document.Attrs{document.IdAttr: idTemplate, "x": xTemplate}); err != nil {
		return err
	}
	for _, key := range c.partitions.Keys() {
		prior, err := document.FindOne(c.doc.Root(), document.AttrEquals(query.Tag, document.IdAttr, fmt.Sprintf(idTemplate, key)))
		if err != nil {
			return err
		}
		for _, descendant := range document.FindAll(prior, document.Tag("*")) {
			if id := descendant.SelectAttr(document.IdAttr); id != nil {
				id.Value = conventionalId(id.Value, key)
			}
		}
	}
	return nil
}

// rename overwrites attributes of the single element matched by the query.
func (c *converter) rename(query document.Selector, attrs document.Attrs) (*etree.Element, error) {
	found, err := document.FindOne(c.doc.Root(), query)
	if err != nil {
		return nil, err
	}
	return document.Patch(found, attrs, true), nil
}

// conventionalId derives "<name>:<key>" from ids like "<name>.<n>" or "<name>:<other key>".
func conventionalId(id string, key string) string {
	name, _, _ := strings.Cut(document.BaseId(id), ".")
	return name + ":" + key
}

// firstChild is the first child element, nil if there is none.
func firstChild(e *etree.Element) *etree.Element {
	if children := e.ChildElements(); len(children) > 0 {
		return children[0]
	}
	return nil
}
