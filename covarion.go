package beastwords

import (
	"errors"

	"github.com/beevik/etree"
	"github.com/n2code/beastwords/internal/document"
)

const combinedKey = "combined"

// covarion nuisance parameters shared by all partitions
var covarionParameters = []string{"bcov_alpha.s", "bcov_s.s", "frequencies.s"}

func combined(base string) string {
	return base + ":" + combinedKey
}

func combineCovarionParameters(c *converter) error {
	for _, base := range covarionParameters {
		query := document.AttrPrefix("parameter", document.IdAttr, base+":")
		if _, err := c.rename(query, document.Attrs{document.IdAttr: combined(base)}); err != nil {
			return err
		}
	}
	return nil
}

func combineCovarionPriors(c *converter) error {
	priors := []struct{ prior, parameter string }{
		{"bcov_alpha_prior.s", "bcov_alpha.s"},
		{"bcov_s_prior.s", "bcov_s.s"},
	}
	for _, p := range priors {
		query := document.AttrPrefix("prior", document.IdAttr, p.prior+":")
		if !c.present(query) {
			continue
		}
		if _, err := c.rename(query, document.Attrs{document.IdAttr: combined(p.prior), "x": "@" + combined(p.parameter)}); err != nil {
			return err
		}
	}
	return nil
}

// attachSharedModel builds the one substitution model inside the owner's site model, the other
// partitions only reference it.
func attachSharedModel(c *converter, siteModel *etree.Element, original *etree.Element, key string, owner bool) error {
	if owner {
		model := document.Patch(original, document.Attrs{
			document.IdAttr: combined("covarion"),
			"alpha":         "@" + combined("bcov_alpha.s"),
			"switchRate":    "@" + combined("bcov_s.s"),
			"vfrequencies":  "@" + combined("frequencies.s"),
		}, false)
		model = document.RewriteDescendantIds(model, combinedKey)
		siteModel.AddChild(model)
		c.sharedModelId = model.SelectAttrValue(document.IdAttr, "")
	} else {
		if c.sharedModelId == "" {
			return errors.New("shared substitution model referenced before it was built")
		}
		siteModel.CreateAttr("substModel", "@"+c.sharedModelId)
	}
	siteModel.AddChild(shapeParameter(key))
	return nil
}

func combineCovarionOperators(c *converter) error {
	scalers := []struct{ operator, parameter string }{
		{"bcovAlphaScaler.s", "bcov_alpha.s"},
		{"bcovSwitchParamScaler.s", "bcov_s.s"},
	}
	for _, s := range scalers {
		query := document.AttrPrefix("operator", document.IdAttr, s.operator+":")
		if _, err := c.rename(query, document.Attrs{document.IdAttr: combined(s.operator), "parameter": "@" + combined(s.parameter)}); err != nil {
			return err
		}
	}

	delta, err := c.rename(document.AttrPrefix("operator", document.IdAttr, "frequenciesDelta.s:"),
		document.Attrs{document.IdAttr: combined("frequenciesDelta.s")})
	if err != nil {
		return err
	}
	target := firstChild(delta)
	if target == nil {
		return errors.New("frequency delta operator has no parameter")
	}
	document.Patch(target, document.Attrs{"idref": combined("frequencies.s")}, true)
	return nil
}

func combineCovarionLoggers(c *converter) error {
	for _, base := range covarionParameters {
		query := document.AttrPrefix("log", "idref", base+":")
		if _, err := c.rename(query, document.Attrs{"idref": combined(base)}); err != nil {
			return err
		}
	}
	return nil
}
