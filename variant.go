package beastwords

import (
	"github.com/beevik/etree"
)

// ModelKind is the model family of a document, read from the beautitemplate attribute of its root.
type ModelKind int

const (
	Generic  ModelKind = iota //any template without dedicated support
	Covarion                  //one substitution model shared by all partitions
	CTMC                      //one substitution model per partition
)

const templateAttr = "beautitemplate"

func (k ModelKind) String() string {
	switch k {
	case Covarion:
		return "BinaryCovarion"
	case CTMC:
		return "BinaryCTMC"
	}
	return "generic"
}

func kindOfTemplate(template string) ModelKind {
	switch template {
	case Covarion.String():
		return Covarion
	case CTMC.String():
		return CTMC
	}
	return Generic
}

// stageHook runs after the common part of a pipeline stage.
type stageHook func(c *converter) error

// substModelHook equips a freshly built site model of the given partition with a substitution model
// derived from the original one. The owner is the first partition to be built.
type substModelHook func(c *converter, siteModel *etree.Element, original *etree.Element, key string, owner bool) error

// variant is the behavior table of one ModelKind.
type variant struct {
	dataType         string //userDataType class of the per-partition alignments
	useAmbiguities   bool
	convertState     stageHook
	convertPriors    stageHook
	convertOperators stageHook
	convertLoggers   stageHook
	attachSubstModel substModelHook
}

var variants = map[ModelKind]variant{
	Generic: {
		dataType:         "beast.base.evolution.datatype.UserDataType",
		attachSubstModel: attachModelCopy,
	},
	Covarion: {
		dataType:         "beast.base.evolution.datatype.TwoStateCovarion",
		useAmbiguities:   true,
		convertState:     combineCovarionParameters,
		convertPriors:    combineCovarionPriors,
		convertOperators: combineCovarionOperators,
		convertLoggers:   combineCovarionLoggers,
		attachSubstModel: attachSharedModel,
	},
	CTMC: {
		dataType:         "beast.base.evolution.datatype.Binary",
		convertState:     splitCTMCParameters,
		convertPriors:    splitCTMCPriors,
		convertOperators: splitCTMCOperators,
		convertLoggers:   splitCTMCLoggers,
		attachSubstModel: attachPartitionModel,
	},
}

func (h stageHook) run(c *converter) error {
	if h == nil {
		return nil
	}
	return h(c)
}
