package beastwords

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/n2code/beastwords/internal/document"
)

var (
	freqParameter        = document.AttrPrefix("parameter", document.IdAttr, "freqParameter.s:")
	gammaShape           = document.AttrPrefix("parameter", document.IdAttr, "gammaShape.s:")
	gammaShapePrior      = document.AttrPrefix("prior", document.IdAttr, "GammaShapePrior.s:")
	frequenciesExchanger = document.AttrPrefix("operator", document.IdAttr, "FrequenciesExchanger.s:")
	gammaShapeScaler     = document.AttrPrefix("operator", document.IdAttr, "gammaShapeScaler.s:")
	freqParameterLog     = document.AttrPrefix("log", "idref", "freqParameter.s")
	gammaShapeLog        = document.AttrPrefix("log", "idref", "gammaShape.s")
)

func splitCTMCParameters(c *converter) error {
	if err := c.replace(freqParameter, document.Attrs{document.IdAttr: "freqParameter.s:%s"}); err != nil {
		return err
	}
	return c.replaceOptional(gammaShape, document.Attrs{document.IdAttr: "gammaShape.s:%s"})
}

func splitCTMCPriors(c *converter) error {
	if !c.present(gammaShapePrior) {
		return nil
	}
	return c.replacePrior(gammaShapePrior, "GammaShapePrior.s:%s", "@gammaShape.s:%s")
}

// attachPartitionModel gives every partition its own substitution model tied to its own frequencies.
func attachPartitionModel(c *converter, siteModel *etree.Element, original *etree.Element, key string, owner bool) error {
	model := document.RewriteDescendantIds(original, key)
	frequencies, err := document.FindOne(model, document.Tag("frequencies"))
	if err != nil {
		return err
	}
	frequencies.CreateAttr("frequencies", "@freqParameter.s:"+key)
	siteModel.RemoveAttr("shape")
	siteModel.AddChild(model)
	siteModel.AddChild(shapeParameter(key))
	return nil
}

func splitCTMCOperators(c *converter) error {
	if c.present(frequenciesExchanger) {
		if err := c.replace(frequenciesExchanger, document.Attrs{document.IdAttr: "FrequenciesExchanger.s:%s"}); err != nil {
			return err
		}
		for _, key := range c.partitions.Keys() {
			exchanger, err := document.FindOne(c.doc.Root(), document.AttrEquals("operator", document.IdAttr, "FrequenciesExchanger.s:"+key))
			if err != nil {
				return err
			}
			target := firstChild(exchanger)
			if target == nil {
				return fmt.Errorf("frequency exchanger of %s has no parameter", key)
			}
			document.Patch(target, document.Attrs{"idref": "freqParameter.s:" + key}, true)
		}
	}
	return c.replaceOptional(gammaShapeScaler, document.Attrs{
		document.IdAttr: "gammaShapeScaler.s:%s",
		"parameter":     "@gammaShape.s:%s",
	})
}

func splitCTMCLoggers(c *converter) error {
	if err := c.replace(freqParameterLog, document.Attrs{"idref": "freqParameter.s:%s"}); err != nil {
		return err
	}
	return c.replaceOptional(gammaShapeLog, document.Attrs{"idref": "gammaShape.s:%s"})
}
