package beastwords

import (
	"errors"
	"fmt"
	"slices"

	"github.com/beevik/etree"
	"github.com/n2code/beastwords/internal/document"
	"github.com/n2code/beastwords/internal/partition"
	"go.uber.org/zap"
)

const filteredAlignment = "FilteredAlignment"

var (
	alignmentFilter = document.AttrEquals("data", "spec", filteredAlignment)
	branchRateModel = document.Tag("branchRateModel")
	treeInit        = document.Tag("init")
	substModel      = document.Tag("substModel")
	likelihoodBlock = document.AttrEquals("distribution", document.IdAttr, "likelihood")
	treeLikelihood  = document.AttrEquals("distribution", "spec", "TreeLikelihood")
)

// convertTreeLikelihood replaces the single tree likelihood by one per partition, each with its own
// filtered alignment and site model. All of them share the tree and the branch rate model.
func (c *converter) convertTreeLikelihood() error {
	root := c.doc.Root()

	filter, err := document.FindOne(root, alignmentFilter)
	if err != nil {
		return err
	}
	alignment := filter.SelectAttrValue("data", "")
	if alignment == "" {
		return errors.New("alignment filter does not reference an alignment")
	}
	clock, err := document.FindOne(root, branchRateModel)
	if err != nil {
		return err
	}
	clockId := clock.SelectAttrValue(document.IdAttr, "")
	if clockId == "" {
		return errors.New("branch rate model has no id")
	}
	init, err := document.FindOne(root, treeInit)
	if err != nil {
		return err
	}
	tree := init.SelectAttrValue("initial", "")
	if tree == "" {
		return errors.New("tree initializer does not reference a tree")
	}
	original, err := document.FindOne(root, substModel)
	if err != nil {
		return err
	}
	likelihood, err := document.FindOne(root, likelihoodBlock)
	if err != nil {
		return err
	}
	single, err := document.FindOne(likelihood, treeLikelihood)
	if err != nil {
		return err
	}

	document.Detach(clock)
	for i, key := range c.partitions.Keys() {
		owner := i == 0
		if c.characterCount(key) == 0 {
			c.log.Warn("partition has no characters besides its ascertainment site", zap.String("partition", key))
		}
		distribution := document.NewElement("distribution", document.Attrs{
			document.IdAttr: "treeLikelihood." + key,
			"spec":          "TreeLikelihood",
			"tree":          tree,
		})
		if c.variant.useAmbiguities {
			distribution.CreateAttr("useAmbiguities", "true")
		}
		if !owner {
			distribution.CreateAttr("branchRateModel", "@"+clockId)
		}

		distribution.AddChild(c.filteredData(key, alignment))

		siteModel := document.NewElement("siteModel", document.Attrs{
			document.IdAttr:      "SiteModel.s:" + key,
			"spec":               "SiteModel",
			"gammaCategoryCount": "1",
			"mutationRate":       "@mutationRate.s:" + key,
		})
		distribution.AddChild(siteModel)
		if err := c.variant.attachSubstModel(c, siteModel, original, key, owner); err != nil {
			return fmt.Errorf("substitution model of %s: %w", key, err)
		}
		siteModel.AddChild(proportionInvariant(key))

		if owner {
			distribution.AddChild(clock)
		}
		likelihood.AddChild(distribution)
		c.log.Debug("tree likelihood built",
			zap.String("partition", key),
			zap.String("filter", partition.EncodeRanges(c.partitions.Sites(key))),
			zap.Bool("owner", owner))
	}

	document.Detach(filter)
	document.Detach(single)
	document.Detach(original)
	return nil
}

// characterCount is the number of sites of the partition that are not ascertainment characters.
func (c *converter) characterCount(key string) (count int) {
	for _, site := range c.partitions.Sites(key) {
		if !slices.Contains(c.ascertainment, site) {
			count++
		}
	}
	return
}

// filteredData wraps the partition's sites of the alignment so that the leading ascertainment character is excluded.
func (c *converter) filteredData(key string, alignment string) *etree.Element {
	outer := document.NewElement("data", document.Attrs{
		document.IdAttr: "orgdata." + key,
		"spec":          filteredAlignment,
		"ascertained":   "true",
		"excludeto":     "1",
		"filter":        "-",
	})
	inner := document.NewElement("data", document.Attrs{
		document.IdAttr: key,
		"spec":          filteredAlignment,
		"data":          alignment,
		"filter":        partition.EncodeRanges(c.partitions.Sites(key)),
	})
	inner.AddChild(document.NewElement("userDataType", document.Attrs{
		document.IdAttr: "userDataType:" + key,
		"spec":          c.variant.dataType,
	}))
	outer.AddChild(inner)
	return outer
}

func proportionInvariant(key string) *etree.Element {
	parameter := document.NewElement("parameter", document.Attrs{
		document.IdAttr: "proportionInvariant.s:" + key,
		"spec":          "parameter.RealParameter",
		"estimate":      "false",
		"lower":         "0.0",
		"name":          "proportionInvariant",
		"upper":         "1.0",
	})
	parameter.SetText("0.0")
	return parameter
}

// shapeParameter is the fixed (not estimated) gamma shape of a partition's site model.
func shapeParameter(key string) *etree.Element {
	parameter := document.NewElement("parameter", document.Attrs{
		document.IdAttr: "gammaShape.s:" + key,
		"spec":          "parameter.RealParameter",
		"estimate":      "false",
		"name":          "shape",
	})
	parameter.SetText("1.0")
	return parameter
}

// attachModelCopy gives every partition its own copy of the original substitution model.
func attachModelCopy(c *converter, siteModel *etree.Element, original *etree.Element, key string, owner bool) error {
	siteModel.AddChild(document.RewriteDescendantIds(original, key))
	siteModel.AddChild(shapeParameter(key))
	return nil
}
